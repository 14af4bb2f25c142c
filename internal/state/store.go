package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/droidheat/amoled/internal/feed"
	"github.com/droidheat/amoled/internal/wallpaper"
)

// Listing is a point-in-time copy of the feed being browsed.
type Listing struct {
	Sort                feed.Sort
	Query               string
	Records             []wallpaper.Record
	Next                feed.Cursor
	Exhausted           bool
	Loading             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the feed has failed several times in a row.
func (l Listing) IsOffline() bool {
	return l.ConsecutiveFailures >= 2
}

// Searching reports whether the listing comes from a search query.
func (l Listing) Searching() bool {
	return l.Query != ""
}

// Request identifies one page load.
type Request struct {
	Generation uint64
	Sort       feed.Sort
	Query      string
	Cursor     feed.Cursor
}

// Store coordinates concurrent page loads into one listing.
type Store struct {
	mu         sync.RWMutex
	listing    Listing
	generation uint64
	seen       map[string]struct{}
}

// Reset discards the current listing and starts a new one.
func (s *Store) Reset(sort feed.Sort, query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.listing = Listing{Sort: sort, Query: strings.TrimSpace(query)}
	s.seen = make(map[string]struct{})
	return s.generation
}

// Begin marks the next page as loading. It reports false while another load
// is in flight or once the feed has no more pages.
func (s *Store) Begin() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listing.Loading || s.listing.Exhausted {
		return Request{}, false
	}
	s.listing.Loading = true
	return Request{
		Generation: s.generation,
		Sort:       s.listing.Sort,
		Query:      s.listing.Query,
		Cursor:     s.listing.Next,
	}, true
}

// Update folds the result of req into the listing. Results from an earlier
// generation are ignored and reported as false. When err is non-nil the
// loaded records are kept and the error is recorded.
func (s *Store) Update(req Request, page feed.Page, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Generation != s.generation {
		return false
	}
	s.listing.Loading = false
	s.listing.LastUpdated = time.Now()

	if err != nil {
		s.listing.LastError = err
		s.listing.ConsecutiveFailures++
		return true
	}

	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, rec := range page.Records {
		if _, dup := s.seen[rec.ID]; dup {
			continue
		}
		s.seen[rec.ID] = struct{}{}
		s.listing.Records = append(s.listing.Records, rec)
	}
	s.listing.Next = page.Next()
	s.listing.Exhausted = !page.HasMore()
	s.listing.LastError = nil
	s.listing.ConsecutiveFailures = 0
	return true
}

// Snapshot returns a copy of the current listing.
func (s *Store) Snapshot() Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.listing
	snap.Records = cloneRecords(s.listing.Records)
	if s.listing.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.listing.LastError)
	}
	return snap
}

// Fetch loads the page req names from src.
func Fetch(ctx context.Context, src feed.Source, req Request) (feed.Page, error) {
	if src == nil {
		return feed.Page{}, fmt.Errorf("feed source is nil")
	}
	if req.Query != "" {
		return src.Search(ctx, req.Query, req.Cursor)
	}
	return src.Page(ctx, req.Sort, req.Cursor)
}

func cloneRecords(records []wallpaper.Record) []wallpaper.Record {
	if len(records) == 0 {
		return nil
	}
	dup := make([]wallpaper.Record, len(records))
	copy(dup, records)
	return dup
}
