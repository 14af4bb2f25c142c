package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/droidheat/amoled/internal/apply"
	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/config"
	"github.com/droidheat/amoled/internal/daily"
	"github.com/droidheat/amoled/internal/diag"
	"github.com/droidheat/amoled/internal/download"
	"github.com/droidheat/amoled/internal/feed"
	"github.com/droidheat/amoled/internal/prefs"
	"github.com/droidheat/amoled/internal/screen"
	"github.com/droidheat/amoled/internal/state"
	"github.com/droidheat/amoled/internal/storage"
	"github.com/droidheat/amoled/internal/ui"
)

// Options configure the application.
type Options struct {
	ConfigPath  string
	PrefsPath   string        // empty uses default ~/.config/amoled/prefs.toml
	UploadEvery time.Duration // zero uses default
}

// Run boots the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := tea.LogToFile(cfg.LogPath, "")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	svc, err := wire(ctx, cfg, opts.PrefsPath, userPrefs)
	if err != nil {
		return err
	}
	defer svc.Close()

	if svc.prefs.SendErrorLogs && cfg.ErrorLogURL != "" {
		StartUploader(ctx, svc.recorder, cfg.ErrorLogURL, opts.UploadEvery)
	}
	svc.startDaily(ctx)

	return ui.Run(ui.Options{
		Context:   ctx,
		Screen:    svc.screen,
		Catalog:   svc.catalog,
		Feed:      svc.feed,
		Listing:   &state.Store{},
		Daily:     svc.daily,
		Prefs:     svc.prefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogPath,
	})
}

// services are the long-lived collaborators behind the UI.
type services struct {
	prefs      prefs.Prefs
	db         *storage.DB
	catalog    *catalog.Store
	recorder   *diag.Recorder
	downloader *download.HTTPService
	wallpapers *apply.CommandService
	downloads  *download.Coordinator
	applier    *apply.Coordinator
	screen     *screen.Screen
	feed       *feed.Client

	// The daily schedule has coordinators of its own so its work never
	// shows up as the state of the wallpaper on screen.
	daily          *daily.Scheduler
	dailyDownloads *download.Coordinator
	dailyApplier   *apply.Coordinator
	stopDaily      context.CancelFunc
}

// wire opens the database, loads the catalog and connects services,
// coordinators and the screen. First runs also get a device identifier and
// the one-time import of files downloaded before the catalog existed.
func wire(ctx context.Context, cfg config.Config, prefsPath string, userPrefs prefs.Prefs) (*services, error) {
	if userPrefs.DeviceID == "" {
		userPrefs.DeviceID = uuid.NewString()
		savePrefs(prefsPath, userPrefs)
	}

	client, err := feed.NewClient(cfg.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("init feed client: %w", err)
	}

	argv, err := apply.ParseCommand(cfg.WallpaperCommand)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := catalog.NewStore(catalog.NewSQLPersistence(db), catalog.FileExists)
	if err := store.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if !userPrefs.LegacyImported {
		n, err := store.ImportLegacy(ctx, cfg.DownloadDir, cfg.FileMarker)
		if err != nil {
			log.Printf("catalog: legacy import failed: %v", err)
		} else {
			log.Printf("catalog: imported %d legacy downloads", n)
			userPrefs.LegacyImported = true
			savePrefs(prefsPath, userPrefs)
		}
	}

	s := &services{
		prefs:   userPrefs,
		db:      db,
		catalog: store,
		feed:    client,
	}
	s.recorder = diag.NewRecorder(db, diag.Options{DeviceID: userPrefs.DeviceID})
	s.downloader = download.NewHTTPService(cfg.DownloadDir, download.HTTPOptions{Timeout: cfg.DownloadTimeout})
	s.wallpapers = apply.NewCommandService(argv)
	s.downloads = download.NewCoordinator(s.downloader, store, s.recorder)
	s.applier = apply.NewCoordinator(s.wallpapers, s.recorder)
	s.screen = screen.New(screen.Deps{
		Downloads:  s.downloads,
		Applier:    s.applier,
		Catalog:    store,
		Wallpapers: s.wallpapers,
		Marker:     cfg.FileMarker,
	})

	s.dailyDownloads = download.NewCoordinator(s.downloader, store, s.recorder)
	s.dailyApplier = apply.NewCoordinator(s.wallpapers, s.recorder)
	history := daily.NewSQLHistory(db)
	job := &daily.Job{
		Feed:      client,
		Downloads: s.dailyDownloads,
		Applier:   s.dailyApplier,
		Catalog:   store,
		History:   history,
		Marker:    cfg.FileMarker,
	}
	s.daily = daily.NewScheduler(job, history, s.recorder, userPrefs.Daily(), 0)
	return s, nil
}

// startDaily runs the daily schedule until ctx is cancelled or Close.
func (s *services) startDaily(ctx context.Context) {
	ctx, s.stopDaily = context.WithCancel(ctx)
	s.daily.Start(ctx)
}

// Close stops transfers and background work, flushes diagnostics and closes
// the database.
func (s *services) Close() {
	if s.stopDaily != nil {
		s.stopDaily()
	}
	s.daily.Wait()
	s.screen.Close()
	s.downloads.Close()
	s.applier.Close()
	s.dailyDownloads.Close()
	s.dailyApplier.Close()
	s.downloader.Close()
	s.wallpapers.Wait()
	s.recorder.Close()
	if err := s.db.Close(); err != nil {
		log.Printf("close database: %v", err)
	}
}

func savePrefs(path string, p prefs.Prefs) {
	if err := prefs.Save(path, p); err != nil {
		log.Printf("prefs: save failed: %v", err)
	}
}
