// Package config loads the application's TOML configuration.
//
// # Discovery
//
// Load reads the file it is given, or ~/.config/amoled/config.toml. A
// missing file is not an error: every field falls back to its default, and
// so does any field left empty in an existing file. Paths may start with ~.
//
// # Fields
//
//	download_dir       ~/Pictures/amoled                 where wallpapers are saved
//	database_path      ~/.local/share/amoled/amoled.db   catalog and error log
//	log_path           ~/.local/share/amoled/amoled.log  log file while the UI runs
//	feed_url           https://www.reddit.com/r/Amoledbackgrounds
//	file_marker        _amoled_droidheat                 embedded in stored filenames
//	wallpaper_command  platform default                  "{path}" is the image path
//	error_log_url      empty (upload disabled)
//	download_timeout   5m                                Go duration, 0 disables
//
// wallpaper_command is split with shell quoting rules, so an argument may be
// quoted to keep its spaces. "{path}" is substituted per argument after
// splitting, so image paths containing spaces are passed intact. When the
// command is osascript the path is escaped for an AppleScript string.
package config
