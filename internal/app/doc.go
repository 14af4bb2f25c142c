// Package app is the composition root of amoled.
//
// # Overview
//
// Run loads configuration and preferences, opens the shared SQLite
// database, connects the services and coordinators that download and apply
// wallpapers, and then hands the terminal to the UI until the user quits.
//
// # Startup
//
//  1. Load ~/.config/amoled/config.toml (defaults when missing)
//  2. Redirect the standard logger to the configured log file
//  3. Load preferences; assign a device identifier on first run
//  4. Open the database and load the catalog, dropping entries whose files
//     are gone
//  5. Import files downloaded before the catalog existed (once)
//  6. Start the diagnostic recorder, the HTTP download service and the
//     wallpaper command service, then the coordinators and the screen
//  7. Start the error log uploader when enabled
//  8. Run the UI (blocks)
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()
//	       ├─────> tea.LogToFile()
//	       ├─────> wire()          database, catalog, services, screen
//	       ├─────> StartUploader() when send_error_logs and error_log_url
//	       └─────> ui.Run()
//
// # Shutdown
//
// When the UI exits, services are closed in reverse order: the screen
// detaches, coordinators stop listening, in-flight transfers are cancelled
// and wallpaper commands are awaited, the diagnostic recorder flushes, and
// the database closes last.
//
// # Error log upload
//
// StartUploader posts stored diagnostics every 15 minutes by default. Each
// consecutive failure doubles the wait, up to two hours; a success resets
// it. Failures are logged and never reach the user.
package app
