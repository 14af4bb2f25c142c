package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/droidheat/amoled/internal/wallpaper"
)

type listRow struct {
	title  string
	meta   string
	marked bool
}

// rows returns the rows of the active list.
func (m Model) rows() []listRow {
	switch m.pane {
	case paneExplore:
		rows := make([]listRow, 0, len(m.explore.Records))
		for _, rec := range m.explore.Records {
			rows = append(rows, listRow{
				title:  rec.DisplayTitle(),
				meta:   rec.Resolution(),
				marked: m.catalog != nil && m.catalog.Contains(rec.ID),
			})
		}
		return rows
	case paneDownloaded:
		rows := make([]listRow, 0, len(m.entries))
		for _, e := range m.entries {
			rows = append(rows, listRow{
				title: e.Title,
				meta:  wallpaper.FormatResolution(e.Width, e.Height),
			})
		}
		return rows
	}
	return nil
}

// renderList renders the active list inside a bordered pane.
func (m Model) renderList(width, height int) string {
	styles := m.theme.Styles()
	inner := max(1, width-2)
	visible := max(1, height-2)

	rows := m.rows()
	var lines []string
	if len(rows) == 0 {
		lines = []string{styles.MutedText.Render(m.emptyListText())}
	} else {
		sel := m.selected[m.pane]
		start := 0
		if sel >= visible {
			start = sel - visible + 1
		}
		end := min(len(rows), start+visible)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderRow(rows[i], inner, i == sel, styles))
		}
	}

	return styles.Pane.
		Width(inner).
		Height(visible).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderRow(row listRow, width int, selected bool, styles Styles) string {
	marker := "  "
	if row.marked {
		marker = "● "
	}
	markerWidth := lipgloss.Width(marker)
	title := truncate(row.title, width-markerWidth-len(row.meta)-1)
	gap := max(1, width-markerWidth-lipgloss.Width(title)-len(row.meta))
	if selected {
		return styles.Selected.Width(width).Render(marker + title + strings.Repeat(" ", gap) + row.meta)
	}
	return styles.SuccessText.Render(marker) +
		styles.Text.Render(title) +
		strings.Repeat(" ", gap) +
		styles.FaintText.Render(row.meta)
}

func (m Model) emptyListText() string {
	if m.pane == paneDownloaded {
		return "Nothing downloaded yet. Press d on a wallpaper in Explore."
	}
	switch {
	case m.explore.Loading:
		return "Loading wallpapers..."
	case m.explore.LastError != nil:
		return "Feed unavailable: " + describeError(m.explore.LastError) + " (r to retry)"
	case m.explore.Searching():
		return "No wallpapers match this search."
	default:
		return "No wallpapers."
	}
}
