package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	wantDir, err := expandPath(defaultDownloadDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDownloadDir) returned error: %v", err)
	}
	if cfg.DownloadDir != wantDir {
		t.Fatalf("DownloadDir = %q, want %q", cfg.DownloadDir, wantDir)
	}
	if !strings.HasPrefix(cfg.DatabasePath, home) || !strings.HasPrefix(cfg.LogPath, home) {
		t.Fatalf("paths not under HOME: %q %q", cfg.DatabasePath, cfg.LogPath)
	}
	if cfg.FeedURL != defaultFeedURL || cfg.FileMarker != defaultFileMarker {
		t.Fatalf("FeedURL/FileMarker = %q/%q", cfg.FeedURL, cfg.FileMarker)
	}
	if cfg.DownloadTimeout != defaultDownloadTimeout {
		t.Fatalf("DownloadTimeout = %v, want %v", cfg.DownloadTimeout, defaultDownloadTimeout)
	}
	if cfg.WallpaperCommand != "" || cfg.ErrorLogURL != "" {
		t.Fatalf("optional fields set: %q %q", cfg.WallpaperCommand, cfg.ErrorLogURL)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
download_dir = "  ~/walls  "
database_path = "/var/tmp/amoled.db"
feed_url = " https://example.com/r/Test "
wallpaper_command = "  swaybg -m fill -i {path} "
error_log_url = "https://logs.example.com/ingest"
download_timeout = "90s"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DownloadDir != filepath.Join(home, "walls") {
		t.Fatalf("DownloadDir = %q, want it under HOME %q", cfg.DownloadDir, home)
	}
	if cfg.DatabasePath != "/var/tmp/amoled.db" {
		t.Fatalf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.FeedURL != "https://example.com/r/Test" {
		t.Fatalf("FeedURL = %q", cfg.FeedURL)
	}
	if cfg.WallpaperCommand != "swaybg -m fill -i {path}" {
		t.Fatalf("WallpaperCommand = %q", cfg.WallpaperCommand)
	}
	if cfg.ErrorLogURL != "https://logs.example.com/ingest" {
		t.Fatalf("ErrorLogURL = %q", cfg.ErrorLogURL)
	}
	if cfg.DownloadTimeout != 90*time.Second {
		t.Fatalf("DownloadTimeout = %v", cfg.DownloadTimeout)
	}
	// Fields not present keep their defaults.
	if cfg.FileMarker != defaultFileMarker {
		t.Fatalf("FileMarker = %q", cfg.FileMarker)
	}
	if !strings.HasPrefix(cfg.LogPath, home) {
		t.Fatalf("LogPath = %q", cfg.LogPath)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"bad toml":         "download_dir = ",
		"bad duration":     `download_timeout = "soon"`,
		"negative timeout": `download_timeout = "-1m"`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("Load returned nil error")
			}
		})
	}
}

func TestLoad_DefaultPathUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := DefaultPath(); got != filepath.Join(home, ".config", "amoled", "config.toml") {
		t.Fatalf("DefaultPath = %q", got)
	}
	if _, err := Load(""); err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/x")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("expandPath = %q", got)
	}
	if _, err := expandPath("  "); err == nil {
		t.Fatal("expandPath accepted empty path")
	}
}
