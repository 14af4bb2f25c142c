package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/droidheat/amoled/internal/apply"
	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/download"
	"github.com/droidheat/amoled/internal/op"
	"github.com/droidheat/amoled/internal/wallpaper"
)

var (
	// ErrNoSubject is returned by actions before a wallpaper is mounted.
	ErrNoSubject = errors.New("screen: no wallpaper selected")
	// ErrNotReady is returned when the action is not offered in the
	// current state.
	ErrNotReady = errors.New("screen: action not available")
)

// Deps are the collaborators a Screen composes.
type Deps struct {
	Downloads  *download.Coordinator
	Applier    *apply.Coordinator
	Catalog    *catalog.Store
	Wallpapers apply.Service
	// Marker is embedded in stored filenames.
	Marker string
}

// Screen is the controller behind one wallpaper view. It re-derives its
// State whenever a coordinator or the catalog changes and on every subject
// change; it never polls.
type Screen struct {
	deps Deps

	mu      sync.Mutex
	subject wallpaper.Record
	mounted bool
	state   State
	seq     uint64
	applied uint64
	unsubs  []func()

	listeners op.Listeners[State]
}

// New wires a screen to its collaborators.
func New(deps Deps) *Screen {
	s := &Screen{deps: deps}
	s.unsubs = []func(){
		deps.Downloads.Subscribe(func(download.State) { s.refresh() }),
		deps.Applier.Subscribe(func(apply.State) { s.refresh() }),
		deps.Catalog.Subscribe(s.catalogChanged),
	}
	return s
}

// Close detaches the screen from its collaborators.
func (s *Screen) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// Subscribe registers fn for presented state changes.
func (s *Screen) Subscribe(fn func(State)) func() {
	return s.listeners.Add(fn)
}

// State returns the current presented state.
func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subject returns the mounted wallpaper.
func (s *Screen) Subject() (wallpaper.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subject, s.mounted
}

// Mount shows rec and computes its initial state from the catalog.
func (s *Screen) Mount(rec wallpaper.Record) State {
	s.mu.Lock()
	s.subject = rec
	s.mounted = true
	s.mu.Unlock()
	return s.refresh()
}

// Switch moves the view to rec. Apply state always starts over; a download
// still running for the previous subject keeps going but is no longer shown.
func (s *Screen) Switch(rec wallpaper.Record) State {
	s.deps.Applier.Reset()
	if d := s.deps.Downloads.Snapshot(); d.Identifier != rec.ID {
		s.deps.Downloads.Reset()
	}
	return s.Mount(rec)
}

// Download starts or retries the download of the subject.
func (s *Screen) Download(ctx context.Context) error {
	rec, ok := s.Subject()
	if !ok {
		return ErrNoSubject
	}
	if strings.TrimSpace(rec.Image.URL) == "" {
		return fmt.Errorf("%w: %s has no source url", ErrNotReady, rec.ID)
	}
	_, err := s.deps.Downloads.Start(ctx, download.RequestFor(rec, s.deps.Marker))
	return err
}

// Apply starts or retries setting the subject as the wallpaper.
func (s *Screen) Apply(ctx context.Context) error {
	if _, ok := s.Subject(); !ok {
		return ErrNoSubject
	}
	st := s.refresh()
	switch {
	case st.Kind == Applying:
		return apply.ErrBusy
	case !st.Kind.CanApply():
		return fmt.Errorf("%w: %s", ErrNotReady, st.Kind)
	}
	_, err := s.deps.Applier.Apply(ctx, st.Path)
	return err
}

// Remove deletes the subject's file and its catalog entry.
func (s *Screen) Remove(ctx context.Context) error {
	rec, ok := s.Subject()
	if !ok {
		return ErrNoSubject
	}
	st := s.refresh()
	switch {
	case st.Kind == Applying:
		return apply.ErrBusy
	case st.Kind == Downloading:
		return download.ErrBusy
	case !st.Kind.CanRemove():
		return fmt.Errorf("%w: %s", ErrNotReady, st.Kind)
	}

	if _, err := s.deps.Wallpapers.Delete(ctx, st.Path); err != nil {
		return fmt.Errorf("remove %s: %w", rec.ID, err)
	}
	if err := s.deps.Catalog.Remove(ctx, rec.ID); err != nil {
		return fmt.Errorf("remove %s: %w", rec.ID, err)
	}
	s.deps.Applier.Reset()
	s.deps.Downloads.Reset()
	s.refresh()
	return nil
}

func (s *Screen) catalogChanged(c catalog.Change) {
	rec, ok := s.Subject()
	if !ok {
		return
	}
	switch c.Kind {
	case catalog.ChangeRemoved, catalog.ChangePruned:
		if c.Entry.ID != rec.ID {
			return
		}
	case catalog.ChangeAdded:
		if c.Entry.ID != rec.ID {
			return
		}
		s.refresh()
		return
	}
	if s.deps.Catalog.Contains(rec.ID) {
		s.refresh()
		return
	}
	// The subject's file is gone; finished states no longer apply.
	if a := s.deps.Applier.Snapshot(); a.Status != apply.StatusApplying {
		s.deps.Applier.Reset()
	}
	if d := s.deps.Downloads.Snapshot(); d.Identifier == rec.ID && d.Status == download.StatusComplete {
		s.deps.Downloads.Reset()
	}
	s.refresh()
}

// refresh re-derives the state. Snapshots are taken without holding the
// screen lock; the sequence number keeps an older derivation from
// overwriting a newer one.
func (s *Screen) refresh() State {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	rec, mounted := s.subject, s.mounted
	s.mu.Unlock()

	var next State
	if mounted {
		d := s.deps.Downloads.Snapshot()
		if d.Identifier != rec.ID {
			d = download.State{}
		}
		a := s.deps.Applier.Snapshot()
		entry, found := s.deps.Catalog.Get(rec.ID)
		next = Derive(d, a, entry, found)
	}

	s.mu.Lock()
	if seq < s.applied || s.subject.ID != rec.ID {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.applied = seq
	changed := !sameState(s.state, next)
	s.state = next
	s.mu.Unlock()

	if changed {
		s.listeners.Emit(next)
	}
	return next
}

func sameState(a, b State) bool {
	return a.Kind == b.Kind &&
		a.Percent == b.Percent &&
		a.Path == b.Path &&
		a.Failure == b.Failure &&
		errors.Is(a.Err, b.Err) && errors.Is(b.Err, a.Err)
}
