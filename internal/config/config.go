package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings read from config.toml.
type Config struct {
	DownloadDir      string
	DatabasePath     string
	LogPath          string
	FeedURL          string
	FileMarker       string
	WallpaperCommand string
	ErrorLogURL      string
	DownloadTimeout  time.Duration
}

const (
	defaultConfigPath      = "~/.config/amoled/config.toml"
	defaultDownloadDir     = "~/Pictures/amoled"
	defaultDatabasePath    = "~/.local/share/amoled/amoled.db"
	defaultLogPath         = "~/.local/share/amoled/amoled.log"
	defaultFeedURL         = "https://www.reddit.com/r/Amoledbackgrounds"
	defaultFileMarker      = "_amoled_droidheat"
	defaultDownloadTimeout = 5 * time.Minute
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DownloadDir:     mustExpand(defaultDownloadDir),
		DatabasePath:    mustExpand(defaultDatabasePath),
		LogPath:         mustExpand(defaultLogPath),
		FeedURL:         defaultFeedURL,
		FileMarker:      defaultFileMarker,
		DownloadTimeout: defaultDownloadTimeout,
	}
}

// Load parses the config file, falling back to defaults when it is missing
// and for every empty field.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		DownloadDir      string `toml:"download_dir"`
		DatabasePath     string `toml:"database_path"`
		LogPath          string `toml:"log_path"`
		FeedURL          string `toml:"feed_url"`
		FileMarker       string `toml:"file_marker"`
		WallpaperCommand string `toml:"wallpaper_command"`
		ErrorLogURL      string `toml:"error_log_url"`
		DownloadTimeout  string `toml:"download_timeout"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.DownloadDir); v != "" {
		cfg.DownloadDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.DatabasePath); v != "" {
		cfg.DatabasePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.FeedURL); v != "" {
		cfg.FeedURL = v
	}
	if v := strings.TrimSpace(raw.FileMarker); v != "" {
		cfg.FileMarker = v
	}
	cfg.WallpaperCommand = strings.TrimSpace(raw.WallpaperCommand)
	cfg.ErrorLogURL = strings.TrimSpace(raw.ErrorLogURL)

	if v := strings.TrimSpace(raw.DownloadTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse download_timeout %q: %w", v, err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("download_timeout must not be negative")
		}
		cfg.DownloadTimeout = d
	}

	return cfg, nil
}

// DefaultPath returns the expanded location of the config file.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
