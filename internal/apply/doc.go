// Package apply sets a downloaded image as the desktop wallpaper and tracks
// the single change a view has in flight.
//
// # Overview
//
// A Service is the platform binding that actually changes the wallpaper. A
// Coordinator runs one change at a time through it and exposes the progress
// as State. The UI's wallpaper screen and the daily wallpaper schedule each
// own a Coordinator over the same CommandService.
//
// # Architecture
//
//   - service.go: the Service contract, Token, Outcome and ChangeEvent
//   - command.go: CommandService, which runs an external program
//   - coordinator.go: Coordinator and event matching
//   - state.go: Status, State and Result
//
// # Reporting Conventions
//
// Platforms differ in how they report a change, so SetWallpaper supports
// both ways:
//
//	inline      SetWallpaper returns OutcomeSucceeded or OutcomeFailed
//	deferred    SetWallpaper returns OutcomePending and a ChangeEvent follows
//
// Whichever result arrives first settles the change; a later duplicate is
// ignored. An error from SetWallpaper means the change never started (the
// file is missing, the command is not installed).
//
// # Tokens
//
// The Coordinator mints a Token for every change before calling
// SetWallpaper and the Service echoes it on the ChangeEvent. Tokened events
// are matched exactly, so a late event from an abandoned change, or from a
// change made by another Coordinator on the same Service, never settles the
// wrong one:
//
//	Apply(a) → token t1        Reset          Apply(a) → token t2
//	event{t1} arrives   → ignored, t2 still applying
//	event{t2} arrives   → t2 applied
//
// Bindings that cannot carry a token leave it empty. Such events are
// charged to the oldest change abandoned by Reset whose path matches (any
// path when the event has none) before they may settle the pending change.
// Up to eight abandoned changes are remembered; a change that finished
// inline or failed to start is forgotten at once.
//
// # Coordinator States
//
//	Status     Meaning                            Next
//	idle       nothing tracked                    applying
//	applying   change running in the platform     applied, error
//	applied    the platform reported success      idle (Reset), applying
//	error      the platform reported failure      idle (Reset), applying
//
// Apply while a change is running returns ErrBusy. Reset returns to idle at
// once and resolves the abandoned change's handle with context.Canceled;
// the platform command keeps running.
//
// # CommandService
//
// The command is an argv template. Every "{path}" in an argument is replaced
// by the image path; for osascript the path is escaped for an AppleScript
// string literal first. Defaults:
//
//	darwin   osascript -e 'tell application "System Events" ... "{path}" ...'
//	others   feh --bg-fill {path}
//
// ParseCommand turns the configured string into argv with shell quoting
// rules:
//
//	/opt/My\ Tools/setbg --mode 'fill screen' {path}
//	→ ["/opt/My Tools/setbg", "--mode", "fill screen", "{path}"]
//
// Commands run in the background with a 30 second timeout. A non-zero exit
// becomes a failed ChangeEvent whose error carries the command's output.
//
// # Errors
//
//	ErrBusy     a change is already in flight
//	ErrNoPath   Apply was called with an empty path
//
// Failures reported by the platform are sent to the diag.Sink with the
// path. Start errors are returned to the caller and not reported.
//
// # Thread Safety
//
// Coordinator and CommandService methods are safe for concurrent use.
// ChangeEvents may arrive on any goroutine, including before SetWallpaper
// has returned. Listeners must not block.
package apply
