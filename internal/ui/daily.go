package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/droidheat/amoled/internal/daily"
)

// DailyScheduler is the daily wallpaper schedule the UI controls;
// *daily.Scheduler implements it.
type DailyScheduler interface {
	Status() daily.Status
	Configure(set daily.Settings)
	Subscribe(fn func(daily.Status)) func()
}

type dailyMsg struct{}

// configureDaily saves set and hands it to the scheduler.
func (m *Model) configureDaily(set daily.Settings) {
	m.prefs.SetDaily(set)
	m.savePrefs()
	if m.daily == nil {
		return
	}
	m.daily.Configure(set)
	m.dailyStatus = m.daily.Status()

	if !set.Enabled {
		m.notice = "Daily wallpaper off"
		return
	}
	m.notice = "Daily wallpaper: " + describeDaily(set)
}

// handleDaily reacts to a scheduler change, announcing finished runs and new
// failures once.
func (m *Model) handleDaily() {
	if m.daily == nil {
		return
	}
	prev := m.dailyStatus
	st := m.daily.Status()
	m.dailyStatus = st

	switch {
	case st.LastErr != nil && !errors.Is(st.LastErr, prev.LastErr) && !st.Running:
		m.notice = "daily: " + describeError(st.LastErr)
	case !st.LastRun.At.IsZero() && !st.LastRun.At.Equal(prev.LastRun.At):
		m.notice = fmt.Sprintf("Daily wallpaper set: %s", st.LastRun.Title)
	}
}

// dailyLabel renders the schedule for the header.
func dailyLabel(st daily.Status, now time.Time) string {
	switch {
	case !st.Settings.Enabled:
		return "daily off"
	case st.Running:
		return "daily running"
	case st.LastErr != nil:
		return "daily failed, retry " + formatNextRun(st.NextRun, now)
	case st.NextRun.IsZero():
		return "daily " + st.Settings.Mode.Label()
	default:
		return "daily " + formatNextRun(st.NextRun, now)
	}
}

func formatNextRun(next, now time.Time) string {
	if !next.After(now) {
		return "now"
	}
	y1, m1, d1 := next.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return next.Format("15:04")
	}
	return next.Format("Mon 15:04")
}

func describeDaily(set daily.Settings) string {
	if set.Mode == daily.ModeDownloaded {
		return set.Mode.Label()
	}
	return set.Mode.Label() + ", " + set.Sort.Label()
}
