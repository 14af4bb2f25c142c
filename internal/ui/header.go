package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/droidheat/amoled/internal/catalog"
)

// renderMain renders the full UI: header, body and footer.
func (m Model) renderMain() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	)
}

// renderHeader renders the logo, the view tabs and what the active view
// is showing.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("amoled", styles.Logo)}
	for _, p := range []pane{paneExplore, paneDownloaded, paneLogs} {
		label := p.String()
		if p == paneDownloaded {
			label = fmt.Sprintf("%s %d", label, len(m.entries))
		}
		style := styles.Tab
		if p == m.pane {
			style = styles.ActiveTab
		}
		parts = append(parts, style.Render(label))
	}
	parts = append(parts, m.headerStatus(styles, bg)...)
	if m.daily != nil {
		style := styles.MutedText
		switch {
		case m.dailyStatus.LastErr != nil:
			style = styles.DangerText
		case m.dailyStatus.Settings.Enabled:
			style = styles.InfoText
		}
		parts = append(parts, bg.Render(dailyLabel(m.dailyStatus, time.Now()), style))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, " "))
}

func (m Model) headerStatus(styles Styles, bg BgStyle) []string {
	switch m.pane {
	case paneExplore:
		parts := []string{bg.Render(m.sort.Label(), styles.MutedText)}
		if m.explore.Searching() {
			parts = []string{bg.Render(fmt.Sprintf("search %q", m.explore.Query), styles.InfoText)}
		}
		switch {
		case m.explore.Loading:
			parts = append(parts, bg.Render(m.spinner.View()+" loading", styles.WarningText))
		case m.explore.IsOffline():
			parts = append(parts, bg.Render("OFFLINE", styles.DangerText))
		case m.explore.LastError != nil:
			parts = append(parts, bg.Render("feed error", styles.DangerText))
		}
		return parts
	case paneDownloaded:
		label := "oldest first"
		if m.order == catalog.NewestFirst {
			label = "newest first"
		}
		return []string{bg.Render(label, styles.MutedText)}
	default:
		if m.logTail.Truncated() {
			return []string{bg.Render(fmt.Sprintf("last %d of %d lines", len(m.logTail.Lines), m.logTail.Total), styles.MutedText)}
		}
		return []string{bg.Render(truncate(m.logPath, 50), styles.MutedText)}
	}
}

// renderBody renders the active view.
func (m Model) renderBody() string {
	height := m.bodyHeight()
	if m.pane == paneLogs {
		return m.logViewport.View()
	}
	listWidth, detailWidth := m.columns()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderList(listWidth, height),
		m.renderDetail(detailWidth, height),
	)
}

// renderFooter shows the search input, the last notice or the short help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	switch {
	case m.searching:
		return styles.Footer.Width(m.width).Render(m.search.View())
	case m.notice != "":
		return styles.Footer.Width(m.width).Render(styles.WarningText.Render(m.notice))
	}

	h := m.help
	h.Styles.ShortKey = styles.AccentText
	h.Styles.ShortDesc = styles.MutedText
	h.Styles.ShortSeparator = styles.FaintText
	return styles.Footer.Width(m.width).Render(h.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) bodyHeight() int {
	return max(3, m.height-2)
}

// columns splits the width between the list and the detail pane.
func (m Model) columns() (list, detail int) {
	list = max(24, m.width*2/5)
	if list > m.width {
		list = m.width
	}
	return list, m.width - list
}
