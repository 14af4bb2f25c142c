// Package screen reduces the download coordinator, the apply coordinator and
// the catalog to the single state a wallpaper view presents.
//
// # Overview
//
// A Screen is the controller behind the detail pane. One wallpaper at a time
// is mounted as its subject. The Screen listens to its collaborators,
// re-derives a presented State whenever any of them changes, and offers the
// user actions (download, apply, remove) that are valid for that state.
//
//	download.Coordinator ─┐
//	apply.Coordinator    ─┼→ Derive → State → Subscribe (UI)
//	catalog.Store        ─┘
//
// # Presented States
//
//	Kind             Shown when                            Actions
//	not downloaded   nothing known about the subject       download
//	downloading      the subject's transfer is running     (none)
//	download failed  the subject's transfer failed         download (retry)
//	ready to apply   the file is on disk                   apply, remove
//	applying         a wallpaper change is running         (none)
//	applied          the change succeeded                  remove
//	apply failed     the change failed                     apply (retry), remove
//
// # Derivation Order
//
// Derive is a pure function. Apply state wins over download state, which
// wins over what the catalog holds:
//
//	apply applying/applied/error      → applying / applied / apply failed
//	download downloading              → downloading (with percent)
//	download error starting/finishing → download failed (with the status)
//	download complete                 → ready to apply (download path)
//	catalog entry                     → ready to apply (entry path)
//	otherwise                         → not downloaded
//
// A download state whose identifier is not the subject's is treated as idle,
// so a transfer still running for the previous subject is never shown.
//
// # Switching Subjects
//
// Switch always resets the apply coordinator. The download coordinator is
// reset only when it tracks another wallpaper; a transfer for the previous
// subject keeps running and lands in the catalog when it finishes.
//
// # Catalog Changes
//
// Only changes for the subject matter. When the subject's entry is removed or
// pruned because its file disappeared, finished apply and download states are
// cleared so the view falls back to not downloaded.
//
// # Errors
//
//	ErrNoSubject   an action was requested before anything was mounted
//	ErrNotReady    the action is not offered in the current state
//
// Busy coordinators surface their own ErrBusy (download.ErrBusy,
// apply.ErrBusy).
//
// # Thread Safety
//
// Screen methods are safe for concurrent use. Collaborator callbacks may
// race with user actions; every derivation takes a sequence number and an
// older derivation never replaces a newer one. Listeners are called only
// when the presented state actually changed.
package screen
