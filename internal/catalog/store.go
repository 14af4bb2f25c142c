package catalog

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/droidheat/amoled/internal/op"
)

// Persistence is the durable backend behind a Store. Load returns entries in
// insertion order.
type Persistence interface {
	Load(ctx context.Context) ([]Entry, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, entries []Entry) error
}

// Store is the in-memory index of downloaded wallpapers, written through to
// its Persistence.
type Store struct {
	mu      sync.RWMutex
	persist Persistence
	exists  ExistsFunc
	entries []Entry
	now     func() time.Time

	listeners op.Listeners[Change]
}

// NewStore builds a store over p. A nil p keeps the catalog in memory only; a
// nil exists uses FileExists.
func NewStore(p Persistence, exists ExistsFunc) *Store {
	if exists == nil {
		exists = FileExists
	}
	return &Store{persist: p, exists: exists, now: time.Now}
}

// Initialize loads every valid entry from persistence. Entries whose file is
// missing are dropped and deleted from persistence.
func (s *Store) Initialize(ctx context.Context) error {
	var loaded []Entry
	if s.persist != nil {
		var err error
		loaded, err = s.persist.Load(ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	}

	valid := make([]Entry, 0, len(loaded))
	var stale []Entry
	seen := make(map[string]int, len(loaded))
	for _, e := range loaded {
		if !s.exists(e.Path) {
			stale = append(stale, e)
			continue
		}
		if i, ok := seen[e.ID]; ok {
			valid[i] = e
			continue
		}
		seen[e.ID] = len(valid)
		valid = append(valid, e)
	}

	s.mu.Lock()
	s.entries = valid
	s.mu.Unlock()

	for _, e := range stale {
		s.dropPersisted(ctx, e)
	}
	s.listeners.Emit(Change{Kind: ChangeLoaded})
	return nil
}

// Add inserts e, or replaces the entry with the same identifier in place.
// Adding an identical entry again is a no-op.
func (s *Store) Add(ctx context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.indexLocked(e.ID)
	if idx >= 0 && s.entries[idx].same(e) {
		s.mu.Unlock()
		return nil
	}
	if e.AddedAt.IsZero() {
		if idx >= 0 {
			e.AddedAt = s.entries[idx].AddedAt
		} else {
			e.AddedAt = s.now().UTC()
		}
	}
	if s.persist != nil {
		if err := s.persist.Put(ctx, e); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("persist entry %s: %w", e.ID, err)
		}
	}
	if idx >= 0 {
		s.entries[idx] = e
	} else {
		s.entries = append(s.entries, e)
	}
	s.mu.Unlock()

	s.listeners.Emit(Change{Kind: ChangeAdded, Entry: e})
	return nil
}

// Remove deletes the entry for id. The backing file is left alone. Removing
// an unknown identifier is not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	if s.persist != nil {
		if err := s.persist.Delete(ctx, id); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("delete entry %s: %w", id, err)
		}
	}
	removed := s.entries[idx]
	s.entries = slices.Delete(s.entries, idx, idx+1)
	s.mu.Unlock()

	s.listeners.Emit(Change{Kind: ChangeRemoved, Entry: removed})
	return nil
}

// Replace swaps the whole catalog for entries. Later duplicates of an
// identifier overwrite earlier ones in place.
func (s *Store) Replace(ctx context.Context, entries []Entry) error {
	next := make([]Entry, 0, len(entries))
	seen := make(map[string]int, len(entries))
	now := s.now().UTC()
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return err
		}
		if e.AddedAt.IsZero() {
			e.AddedAt = now
		}
		if i, ok := seen[e.ID]; ok {
			next[i] = e
			continue
		}
		seen[e.ID] = len(next)
		next = append(next, e)
	}

	s.mu.Lock()
	if s.persist != nil {
		if err := s.persist.ReplaceAll(ctx, next); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("replace catalog: %w", err)
		}
	}
	s.entries = next
	s.mu.Unlock()

	s.listeners.Emit(Change{Kind: ChangeReplaced})
	return nil
}

// Get returns the entry stored under id. An entry whose file has disappeared
// is pruned and reported as absent.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	idx := s.indexLocked(id)
	var e Entry
	if idx >= 0 {
		e = s.entries[idx]
	}
	s.mu.RUnlock()

	if idx < 0 {
		return Entry{}, false
	}
	if !s.exists(e.Path) {
		s.prune(e)
		return Entry{}, false
	}
	return e, true
}

// Contains reports whether a valid entry exists for id.
func (s *Store) Contains(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// List returns a copy of the valid entries in the requested order.
func (s *Store) List(order Order) []Entry {
	s.mu.RLock()
	snapshot := slices.Clone(s.entries)
	s.mu.RUnlock()

	out := make([]Entry, 0, len(snapshot))
	for _, e := range snapshot {
		if !s.exists(e.Path) {
			s.prune(e)
			continue
		}
		out = append(out, e)
	}
	if order == NewestFirst {
		slices.Reverse(out)
	}
	return out
}

// Len returns the number of entries currently held, without validating files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers fn for change notifications. Notifications are
// delivered on the goroutine that performed the mutation, after the store's
// lock is released. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Change)) func() {
	return s.listeners.Add(fn)
}

func (s *Store) prune(e Entry) {
	s.mu.Lock()
	idx := s.indexLocked(e.ID)
	if idx < 0 || s.entries[idx].Path != e.Path {
		s.mu.Unlock()
		return
	}
	s.entries = slices.Delete(s.entries, idx, idx+1)
	s.mu.Unlock()

	s.dropPersisted(context.Background(), e)
	s.listeners.Emit(Change{Kind: ChangePruned, Entry: e})
}

func (s *Store) dropPersisted(ctx context.Context, e Entry) {
	log.Printf("catalog: pruning %s, file missing: %s", e.ID, e.Path)
	if s.persist == nil {
		return
	}
	if err := s.persist.Delete(ctx, e.ID); err != nil {
		log.Printf("catalog: delete stale entry %s failed: %v", e.ID, err)
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}
