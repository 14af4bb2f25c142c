package download

import (
	"context"
	"errors"
)

var (
	// ErrBusy is returned when the coordinator already has a download in
	// flight.
	ErrBusy = errors.New("download: already in progress")
	// ErrInFlight is returned by a service asked to fetch a filename it is
	// already fetching.
	ErrInFlight = errors.New("download: filename already in flight")
	// ErrPermission is returned when the destination cannot be written.
	ErrPermission = errors.New("download: destination not writable")
	// ErrInvalidRequest is returned for requests missing a URL, filename or
	// identifier, or carrying a malformed URL.
	ErrInvalidRequest = errors.New("download: invalid request")
)

// Token identifies one transfer started by a Service.
type Token string

// EventKind distinguishes progress from completion.
type EventKind int

const (
	EventProgress EventKind = iota
	EventComplete
)

// Event is published by a Service. Progress events for a token precede its
// single completion event.
type Event struct {
	Token    Token
	Filename string
	Kind     EventKind
	Percent  int
	Success  bool
	Path     string
	Err      error
}

// Service performs downloads. Start returns once the transfer is enqueued;
// outcomes are delivered to subscribers.
type Service interface {
	Start(ctx context.Context, url, filename, ext string) (Token, error)
	Subscribe(fn func(Event)) func()
	FileExists(ctx context.Context, path string) (bool, error)
	Destination(filename, ext string) string
}
