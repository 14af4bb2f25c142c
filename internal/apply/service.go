package apply

import (
	"context"
	"errors"
)

var (
	// ErrBusy is returned when an apply is already in flight.
	ErrBusy = errors.New("apply: wallpaper change already in progress")
	// ErrNoPath is returned when there is no file to apply.
	ErrNoPath = errors.New("apply: no wallpaper path")
)

// Outcome is what a Service knows when SetWallpaper returns. Bindings that
// report through events return OutcomePending; bindings that finish inline
// return the result directly.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// Token identifies one wallpaper change. The coordinator mints it and the
// Service echoes it back on the change's event.
type Token string

// ChangeEvent reports the end of a wallpaper change. Bindings that cannot
// carry a token leave it empty; such events are matched by path.
type ChangeEvent struct {
	Token   Token
	Success bool
	Path    string
	Err     error
}

// Service is the platform wallpaper binding. SetWallpaper returns an error
// only when the change could not be started at all.
type Service interface {
	SetWallpaper(ctx context.Context, token Token, path string) (Outcome, error)
	Subscribe(fn func(ChangeEvent)) func()
	Delete(ctx context.Context, path string) (bool, error)
}
