package ui

import (
	"strings"

	"github.com/droidheat/amoled/internal/logtail"
)

// updateLogViewport renders the log tail into the viewport and follows the
// newest line.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	styles := m.theme.Styles()

	if len(m.logTail.Lines) == 0 {
		m.logViewport.SetContent(styles.FaintText.Render("No log output yet."))
		return
	}

	var b strings.Builder
	for i, line := range m.logTail.Lines {
		if i > 0 {
			b.WriteString("\n")
		}
		stamp, msg := logtail.Split(line)
		if stamp != "" {
			b.WriteString(styles.FaintText.Render(stamp))
			b.WriteString(" ")
		}
		b.WriteString(styles.LogStyle(logtail.Classify(line)).Render(msg))
	}
	m.logViewport.SetContent(b.String())
	m.logViewport.GotoBottom()
}
