package ui

import (
	"testing"

	"github.com/droidheat/amoled/internal/logtail"
	"github.com/droidheat/amoled/internal/screen"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Amoled", "Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Amoled":   "Nightfox",
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Amoled",
		"Unknown":  "Amoled",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%s).Name = %q", name, got)
		}
	}
	if got := GetTheme("Unknown").Name; got != "Amoled" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Amoled", got)
	}
	if bg := GetTheme("Amoled").Background; bg != "#000000" {
		t.Fatalf("Amoled background = %q, want true black", bg)
	}
}

func TestThemesCoverEveryKind(t *testing.T) {
	kinds := []screen.Kind{
		screen.NotDownloaded, screen.Downloading, screen.DownloadFailed,
		screen.ReadyToApply, screen.Applying, screen.Applied, screen.ApplyFailed,
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, k := range kinds {
			if th.StatusColors[k] == "" {
				t.Errorf("theme %s has no color for %s", name, k)
			}
		}
	}
}

func TestStatusStyleFallsBackToMuted(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()
	styles.statusColors = nil
	got := styles.StatusStyle(screen.Applied).GetBackground()
	if got == nil {
		t.Fatal("StatusStyle background = nil")
	}
	if want := styles.MutedText.GetForeground(); got != want {
		t.Fatalf("StatusStyle background = %v, want muted %v", got, want)
	}
}

func TestLogStyle(t *testing.T) {
	styles := GetTheme("Amoled").Styles()
	if got, want := styles.LogStyle(logtail.LevelError).GetForeground(), styles.DangerText.GetForeground(); got != want {
		t.Fatalf("error style = %v, want %v", got, want)
	}
	if got, want := styles.LogStyle(logtail.LevelWarn).GetForeground(), styles.WarningText.GetForeground(); got != want {
		t.Fatalf("warn style = %v, want %v", got, want)
	}
	if got, want := styles.LogStyle(logtail.LevelInfo).GetForeground(), styles.Text.GetForeground(); got != want {
		t.Fatalf("info style = %v, want %v", got, want)
	}
}
