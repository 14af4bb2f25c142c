package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/droidheat/amoled/internal/download"
	"github.com/droidheat/amoled/internal/screen"
	"github.com/droidheat/amoled/internal/wallpaper"
)

type detailField struct {
	label string
	value string
}

// renderDetail renders the mounted wallpaper and its presented state.
func (m Model) renderDetail(width, height int) string {
	styles := m.theme.Styles()
	inner := max(1, width-2)
	pane := styles.FocusedPane.Width(inner).Height(max(1, height-2)).Padding(0, 1)

	rec, ok := m.currentRecord()
	if !ok {
		return pane.Render(styles.FaintText.Render("No wallpaper selected."))
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Width(inner - 2).Render(rec.DisplayTitle()))
	b.WriteString("\n\n")

	for _, f := range m.detailFields(rec, time.Now()) {
		if f.value == "" {
			continue
		}
		b.WriteString(styles.MutedText.Width(12).Render(f.label))
		b.WriteString(styles.Text.Render(f.value))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	st := m.view
	b.WriteString(styles.StatusStyle(st.Kind).Render(st.Kind.String()))
	b.WriteString("\n")
	if body := m.stateBody(st, styles); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.actionHints(rec, st, styles))

	return pane.Render(b.String())
}

// detailFields lists what is known about rec; Downloaded entries add their
// stored path and when they were added.
func (m Model) detailFields(rec wallpaper.Record, now time.Time) []detailField {
	fields := []detailField{
		{"Resolution", rec.Resolution()},
	}
	if rec.Author != "" {
		fields = append(fields, detailField{"Author", "u/" + rec.Author})
	}
	fields = append(fields,
		detailField{"Flair", rec.Flair},
	)
	if rec.Score != 0 || rec.Comments != 0 {
		fields = append(fields,
			detailField{"Score", compactCount(rec.Score)},
			detailField{"Comments", compactCount(rec.Comments)},
		)
	}
	fields = append(fields,
		detailField{"Posted", ago(rec.CreatedAt, now)},
		detailField{"Link", rec.Permalink},
	)

	if m.pane == paneDownloaded {
		if i := m.selected[paneDownloaded]; i < len(m.entries) {
			e := m.entries[i]
			fields = append(fields,
				detailField{"Added", ago(e.AddedAt, now)},
				detailField{"File", e.Path},
			)
		}
	}
	return fields
}

// stateBody renders the progress, failure or location for st.
func (m Model) stateBody(st screen.State, styles Styles) string {
	switch st.Kind {
	case screen.Downloading:
		return m.progress.ViewAs(float64(st.Percent)/100) + " " + styles.MutedText.Render(fmt.Sprintf("%d%%", st.Percent))
	case screen.Applying:
		return m.spinner.View() + " " + styles.MutedText.Render("Setting wallpaper...")
	case screen.DownloadFailed:
		return styles.DangerText.Render(failureText(st))
	case screen.ApplyFailed:
		msg := "Could not set wallpaper"
		if st.Err != nil {
			msg += ": " + describeError(st.Err)
		}
		return styles.DangerText.Render(msg)
	case screen.ReadyToApply, screen.Applied:
		return styles.FaintText.Render(st.Path)
	}
	return ""
}

func failureText(st screen.State) string {
	msg := "Download failed"
	if st.Failure == download.StatusErrorStarting {
		msg = "Download could not start"
	}
	if st.Err != nil {
		msg += ": " + describeError(st.Err)
	}
	return msg
}

// actionHints lists the keys offered in st.
func (m Model) actionHints(rec wallpaper.Record, st screen.State, styles Styles) string {
	var hints []string
	hint := func(k, desc string) {
		hints = append(hints, styles.AccentText.Render(k)+" "+styles.MutedText.Render(desc))
	}

	if st.Kind.CanDownload() && rec.Image.URL != "" {
		if st.Kind == screen.DownloadFailed {
			hint("d", "retry download")
		} else {
			hint("d", "download")
		}
	}
	if st.Kind.CanApply() {
		if st.Kind == screen.ApplyFailed {
			hint("a", "retry")
		} else {
			hint("a", "set wallpaper")
		}
	}
	if st.Kind.CanRemove() {
		hint("x", "delete")
	}
	hint("←/→", "browse")

	return strings.Join(hints, "   ")
}
