package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/droidheat/amoled/internal/daily"
	"github.com/droidheat/amoled/internal/feed"
)

func writePrefs(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p != Default() {
		t.Fatalf("prefs = %+v, want %+v", p, Default())
	}

	writePrefs(t, filepath.Join(home, ".config", "amoled", "prefs.toml"),
		"theme = \"Slate\"\nsort = \"top-week\"\ndownloaded_order = \"newest\"\nsend_error_logs = false\n")

	p, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Prefs{Theme: "Slate", Sort: "top-week", DownloadedOrder: "newest", DailyMode: "online", DailySort: "hot"}
	if p != want {
		t.Fatalf("prefs = %+v, want %+v", p, want)
	}
}

func TestLoad_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Prefs
	}{
		{
			name: "missing keys keep defaults",
			body: "theme = \"Nightfox\"\n",
			want: Prefs{Theme: "Nightfox", Sort: "hot", DownloadedOrder: "oldest", SendErrorLogs: true, DailyMode: "online", DailySort: "hot"},
		},
		{
			name: "blank values",
			body: "theme = \"  \"\nsort = \"\"\ndownloaded_order = \"\"\n",
			want: Default(),
		},
		{
			name: "unknown enumerations",
			body: "sort = \"controversial\"\ndownloaded_order = \"random\"\ndaily_mode = \"weekly\"\ndaily_sort = \"rising\"\n",
			want: Default(),
		},
		{
			name: "case and whitespace",
			body: "sort = \" NEW \"\ndownloaded_order = \"Newest\"\ndevice_id = \" abc \"\n",
			want: Prefs{Theme: "Amoled", Sort: "new", DownloadedOrder: "newest", SendErrorLogs: true, DailyMode: "online", DailySort: "hot", DeviceID: "abc"},
		},
		{
			name: "daily schedule",
			body: "daily_enabled = true\ndaily_mode = \"Downloaded\"\ndaily_sort = \"top-month\"\n",
			want: Prefs{Theme: "Amoled", Sort: "hot", DownloadedOrder: "oldest", SendErrorLogs: true, DailyEnabled: true, DailyMode: "downloaded", DailySort: "top-month"},
		},
		{
			name: "invalid toml",
			body: "not valid toml {{{\n",
			want: Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			writePrefs(t, path, tt.body)

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != tt.want {
				t.Fatalf("prefs = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSave_RoundTripsAndLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "prefs.toml")

	p := Default()
	p.Theme = "Kanagawa"
	p.DeviceID = "device-1"
	p.LegacyImported = true
	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Overwrite once more to exercise the replace path.
	p.SendErrorLogs = false
	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != p {
		t.Fatalf("loaded = %+v, want %+v", got, p)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".prefs-") {
			t.Fatalf("temp file %q left behind", e.Name())
		}
	}
}

func TestSave_OmitsEmptyDeviceID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "device_id") {
		t.Fatalf("file contains device_id:\n%s", data)
	}
}

func TestDailySettings(t *testing.T) {
	p := Default()
	if got := p.Daily(); got != (daily.Settings{Mode: daily.ModeOnline, Sort: feed.SortHot}) {
		t.Fatalf("default Daily() = %+v", got)
	}

	set := daily.Settings{Enabled: true, Mode: daily.ModeDownloaded, Sort: feed.SortTopYear}
	p.SetDaily(set)
	if p.DailyMode != "downloaded" || p.DailySort != "top-year" || !p.DailyEnabled {
		t.Fatalf("SetDaily stored %+v", p)
	}

	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Daily(); got != set {
		t.Fatalf("Daily() after reload = %+v, want %+v", got, set)
	}
}
