// Package op provides the small concurrency primitives shared by the
// coordinators: a single-assignment operation handle and a listener set.
package op

import (
	"context"
	"sync"
)

// Handle tracks the outcome of one asynchronous operation. Platform bindings
// report outcomes either as a direct return value or as an event on a shared
// stream; both paths feed Resolve, and only the first call wins.
type Handle[T any] struct {
	mu       sync.Mutex
	resolved bool
	value    T
	done     chan struct{}
}

// New returns an unresolved handle.
func New[T any]() *Handle[T] {
	return &Handle[T]{done: make(chan struct{})}
}

// Resolved returns a handle that already carries v.
func Resolved[T any](v T) *Handle[T] {
	h := New[T]()
	h.Resolve(v)
	return h
}

// Resolve records v as the outcome. It reports whether this call resolved the
// handle; later calls are ignored and return false.
func (h *Handle[T]) Resolve(v T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resolved {
		return false
	}
	h.resolved = true
	h.value = v
	close(h.done)
	return true
}

// Done is closed once the handle resolves.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Result returns the outcome and whether the handle has resolved.
func (h *Handle[T]) Result() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.resolved
}

// Wait blocks until the handle resolves or ctx ends.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		v, _ := h.Result()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
