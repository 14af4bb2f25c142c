// Package download runs wallpaper downloads and tracks the one a view cares
// about.
//
// # Overview
//
// Downloading is split between a Service, which performs transfers, and a
// Coordinator, which follows a single transfer on behalf of one view and
// records the finished file in the catalog. The UI's wallpaper screen owns
// one Coordinator and the daily wallpaper schedule owns another; both share
// the same HTTPService.
//
// # Architecture
//
//   - service.go: the Service contract, Event and the sentinel errors
//   - http.go: HTTPService, the production Service
//   - coordinator.go: Coordinator, handles and catalog recording
//   - state.go: Status, State, Request and Result
//
// Data flows one way:
//
//	Coordinator.Start(req)
//	      ↓
//	Service.Start(url, filename, ext) → Token
//	      ↓
//	Event{Token, Progress 0..99} ... Event{Token, Complete}
//	      ↓
//	Coordinator: catalog.Add → State{Complete} → handle resolved
//
// # Service and Events
//
// Service.Start returns as soon as a transfer is enqueued. Everything after
// that arrives as Events on the Subscribe callback: zero or more
// EventProgress events followed by exactly one EventComplete, all carrying
// the token Start returned. A filename already being fetched is refused with
// ErrInFlight, so two coordinators asking for the same wallpaper never write
// the same file.
//
// HTTPService streams the body into "<name>.<ext>.download" beside the
// destination and renames it into place once the transfer finished, so a
// half-written file never looks like a finished one. Progress events are
// throttled to one per ProgressInterval (200ms by default). Responses without
// a Content-Length report no intermediate progress.
//
// # Coordinator States
//
//	Status              Meaning                          Next
//	idle                nothing tracked                  downloading
//	downloading         transfer running, Percent 0..99  complete, error finishing
//	complete            file on disk and in catalog      idle (Reset)
//	error starting      request invalid or not enqueued  idle (Reset), downloading
//	error finishing     transfer or catalog write failed idle (Reset), downloading
//
// State.Identifier names the wallpaper the state belongs to, so a view can
// ignore a state left over from another subject.
//
// # Start Semantics
//
// Start resolves immediately, without fetching, when the wallpaper is
// already known:
//
//	in catalog                  → path from the catalog entry
//	file at the destination     → entry added to the catalog, that path
//	neither                     → transfer started
//
// A second Start while a transfer is running returns ErrBusy and leaves the
// running transfer alone. Progress never goes backwards and is capped at 99
// until the completion event arrives.
//
// Events are matched to the tracked transfer by token. Until Service.Start
// has returned the token, the filename is used instead, so a completion that
// races ahead of Start is not lost.
//
// # Handles
//
// Start returns an op.Handle resolved exactly once with a Result. Callers that
// need to block (the daily schedule) use Handle.Wait; the UI ignores the
// handle and follows State through Subscribe instead.
//
// # Errors
//
//	ErrBusy             a transfer is already tracked
//	ErrInFlight         the service is already fetching that filename
//	ErrPermission       the download directory cannot be created or written
//	ErrInvalidRequest   missing URL, filename or identifier, or a bad URL
//
// Failures after a transfer was enqueued, including a catalog write that
// fails after the file arrived, move the coordinator to StatusErrorFinishing
// and are sent to the diag.Sink with the identifier, path, URL and filename.
// Errors returned from Start itself are not reported; the caller already has
// them.
//
// # Thread Safety
//
// Coordinator and HTTPService methods are safe for concurrent use. Listeners
// run on the goroutine that caused the change, after the coordinator's lock
// is released, and must not block.
package download
