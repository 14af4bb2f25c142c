// Package daily changes the desktop wallpaper once a day in the background.
//
// # Overview
//
// The feature has three settings, all kept in prefs and edited from the UI:
//
//	daily_enabled   off by default
//	daily_mode      "online" or "downloaded"
//	daily_sort      feed sort used in online mode ("hot", "top-week", ...)
//
// In online mode each run takes the top post of the configured feed sort,
// downloads it into the catalog (or reuses the file when it is already
// there) and sets it. In downloaded mode each run picks a catalog entry
// instead, so no network is needed.
//
// # Components
//
// Job:
//   - Performs one change, blocking until the wallpaper is set or fails
//   - Downloads through a download.Coordinator and sets through an
//     apply.Coordinator of its own, sharing the platform services with the
//     UI; per-attempt tokens keep the two from settling each other's work
//   - Records every successful run in History
//
// Scheduler:
//   - Owns the timer goroutine and the settings
//   - Exposes Status and Subscribe for the UI header
//
// SQLHistory:
//   - The daily_runs table in the shared SQLite database
//   - Supplies the anchor for the schedule and the recent picks
//
// # Schedule
//
// The next run is due one interval (a day) after the last recorded run.
// Because the anchor is read from the database on Start, a restart keeps
// the rhythm instead of changing the wallpaper again:
//
//	last run 09:00, program restarted 15:00  → next run 09:00 tomorrow
//	no run recorded yet                      → run now
//	feature switched on from the UI          → run now, then daily
//	run failed                               → retry after 5m, 10m, 20m ...
//	                                           capped at the interval
//
// Switching the feature off stops the timer; nothing runs until it is
// switched on again. Changing mode or sort while enabled only affects the
// next run.
//
// # Downloaded rotation
//
// Entries are considered oldest first. The first one not set by any of the
// last 14 runs wins. When every entry was used that recently (small
// catalogs), a random entry is chosen so the rotation never stalls:
//
//	catalog: a b c    recent: b a    → c
//	catalog: a b c    recent: c b a  → random of a b c
//
// # Errors
//
// A failed run keeps the previous LastRun and stores the error in
// Status.LastErr, which the UI shows until the next success. Failures are
// logged and reported to the diagnostic sink, except ErrNothingToSet (an
// empty feed or an empty catalog) which is an expected state, not a fault.
//
// # Thread Safety
//
// Scheduler methods are safe for concurrent use. Configure wakes the timer
// goroutine so new settings apply immediately. Subscribers are called from
// the goroutine that changed the status and must not block.
package daily
