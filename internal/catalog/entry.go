package catalog

import (
	"errors"
	"os"
	"strings"
	"time"
)

// ErrInvalidEntry is returned when an entry lacks an identifier or a path.
var ErrInvalidEntry = errors.New("catalog: entry requires id and path")

// Entry is a downloaded wallpaper. Width and Height are zero when unknown.
type Entry struct {
	ID      string
	Title   string
	Path    string
	Width   int
	Height  int
	AddedAt time.Time
}

func (e Entry) validate() error {
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Path) == "" {
		return ErrInvalidEntry
	}
	return nil
}

func (e Entry) same(other Entry) bool {
	return e.ID == other.ID &&
		e.Title == other.Title &&
		e.Path == other.Path &&
		e.Width == other.Width &&
		e.Height == other.Height
}

// Order selects the presentation order for List.
type Order int

const (
	OldestFirst Order = iota
	NewestFirst
)

// String returns the preference value for the order.
func (o Order) String() string {
	if o == NewestFirst {
		return "newest"
	}
	return "oldest"
}

// ParseOrder maps a preference value back to an Order; unknown values are
// OldestFirst.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), "newest") {
		return NewestFirst
	}
	return OldestFirst
}

// ChangeKind identifies what happened to the catalog.
type ChangeKind int

const (
	ChangeLoaded ChangeKind = iota
	ChangeAdded
	ChangeRemoved
	ChangePruned
	ChangeReplaced
)

// Change is delivered to subscribers after a mutation is committed. Entry is
// set for ChangeAdded, ChangeRemoved and ChangePruned.
type Change struct {
	Kind  ChangeKind
	Entry Entry
}

// ExistsFunc reports whether the file at path is present.
type ExistsFunc func(path string) bool

// FileExists is the default ExistsFunc.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
