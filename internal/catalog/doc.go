// Package catalog is the durable record of downloaded wallpapers.
//
// # Overview
//
// The Store keeps one Entry per wallpaper identifier, in insertion order, and
// writes every mutation through to a Persistence backend (SQLPersistence in
// production). It is the only state shared between the download coordinator,
// the screen state machine and the list views, so every method is safe for
// concurrent use and change notifications are delivered through Subscribe.
//
// # Validity
//
// An entry is valid only while its backing file exists. Entries whose file
// has vanished are treated as expected drift, not errors:
//
//   - Initialize drops them while loading and deletes them from persistence.
//   - Get and List prune them lazily and emit a ChangePruned notification.
//
// The store never deletes image files itself. Callers remove the file (for
// example through the wallpaper service) and then call Remove.
//
// # Ordering
//
// Storage order is insertion order. OldestFirst and NewestFirst are applied
// at read time by List. Replacing an entry by identifier keeps its position.
//
// # Legacy import
//
// Builds that predate the structured catalog encoded the identifier and title
// in the stored filename. ImportLegacy scans a directory once and adds those
// files as entries; steady-state code never parses filenames.
package catalog
