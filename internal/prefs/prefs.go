// Package prefs persists the settings a user changes from inside the UI:
// theme, feed sort, downloaded-list order, error-log sharing, the daily
// wallpaper schedule, and the per-install bookkeeping (device id, legacy
// import done).
//
// The file lives at ~/.config/amoled/prefs.toml. A missing or unreadable file
// never stops the program; Load falls back to defaults instead.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/daily"
	"github.com/droidheat/amoled/internal/feed"
)

const (
	defaultPrefsPath = "~/.config/amoled/prefs.toml"
	defaultTheme     = "Amoled"
)

// Prefs is the on-disk preference record.
type Prefs struct {
	Theme           string `toml:"theme"`
	Sort            string `toml:"sort"`
	DownloadedOrder string `toml:"downloaded_order"`
	SendErrorLogs   bool   `toml:"send_error_logs"`
	DailyEnabled    bool   `toml:"daily_enabled"`
	DailyMode       string `toml:"daily_mode"`
	DailySort       string `toml:"daily_sort"`
	DeviceID        string `toml:"device_id,omitempty"`
	LegacyImported  bool   `toml:"legacy_imported"`
}

// Default returns the preferences of a fresh install.
func Default() Prefs {
	return Prefs{
		Theme:           defaultTheme,
		Sort:            feed.SortHot.String(),
		DownloadedOrder: catalog.OldestFirst.String(),
		SendErrorLogs:   true,
		DailyMode:       daily.ModeOnline.String(),
		DailySort:       feed.SortHot.String(),
	}
}

// Daily returns the daily wallpaper settings.
func (p Prefs) Daily() daily.Settings {
	return daily.Settings{
		Enabled: p.DailyEnabled,
		Mode:    daily.ParseMode(p.DailyMode),
		Sort:    feed.ParseSort(p.DailySort),
	}
}

// SetDaily stores set in p.
func (p *Prefs) SetDaily(set daily.Settings) {
	p.DailyEnabled = set.Enabled
	p.DailyMode = set.Mode.String()
	p.DailySort = set.Sort.String()
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// normalize canonicalises enumerated values so later readers can compare
// strings directly. Unknown sorts and orders collapse to the defaults.
func (p Prefs) normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.Sort = feed.ParseSort(p.Sort).String()
	p.DownloadedOrder = catalog.ParseOrder(p.DownloadedOrder).String()
	p.DailyMode = daily.ParseMode(p.DailyMode).String()
	p.DailySort = feed.ParseSort(p.DailySort).String()
	p.DeviceID = strings.TrimSpace(p.DeviceID)
	return p
}

// Load reads preferences from path, or from DefaultPath when path is blank.
// It never fails: problems reading or decoding the file yield defaults.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return Default(), nil
	}

	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	return p.normalize(), nil
}

// Save writes p to path atomically, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		p = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(p, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		p = filepath.Join(home, rest)
	}
	return filepath.Abs(p)
}
