package daily

import (
	"errors"
	"strings"
	"time"

	"github.com/droidheat/amoled/internal/feed"
)

// ErrNothingToSet is returned when the chosen source offers no wallpaper.
var ErrNothingToSet = errors.New("daily: no wallpaper available")

// Mode selects where the daily wallpaper comes from.
type Mode int

const (
	// ModeOnline downloads the top post of the configured feed sort.
	ModeOnline Mode = iota
	// ModeDownloaded rotates through the catalog.
	ModeDownloaded
)

func (m Mode) String() string {
	if m == ModeDownloaded {
		return "downloaded"
	}
	return "online"
}

// Label is the mode as shown in the UI.
func (m Mode) Label() string {
	if m == ModeDownloaded {
		return "Downloaded"
	}
	return "Online"
}

// Next returns the other mode.
func (m Mode) Next() Mode {
	if m == ModeDownloaded {
		return ModeOnline
	}
	return ModeDownloaded
}

// ParseMode maps a preference value to a Mode; unknown values are
// ModeOnline.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "downloaded") {
		return ModeDownloaded
	}
	return ModeOnline
}

// Settings are the user's daily wallpaper choices. Sort only matters in
// ModeOnline.
type Settings struct {
	Enabled bool
	Mode    Mode
	Sort    feed.Sort
}

// Run records one wallpaper change made by the scheduler.
type Run struct {
	ID    string
	Title string
	Path  string
	Mode  Mode
	At    time.Time
}

// Status is what the scheduler reports to observers. NextRun is zero while
// disabled. LastErr is the error of the most recent attempt, cleared by the
// next success.
type Status struct {
	Settings Settings
	LastRun  Run
	NextRun  time.Time
	Running  bool
	LastErr  error
}
