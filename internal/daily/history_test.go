package daily

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/droidheat/amoled/internal/storage"
)

func openHistory(t *testing.T) *SQLHistory {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "daily.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLHistory(db)
}

func TestSQLHistory_EmptyDatabase(t *testing.T) {
	h := openHistory(t)
	ctx := context.Background()

	if _, ok, err := h.Last(ctx); err != nil || ok {
		t.Fatalf("Last() ok = %v, err = %v; want no run", ok, err)
	}
	ids, err := h.Recent(ctx, 5)
	if err != nil || len(ids) != 0 {
		t.Fatalf("Recent() = %v, %v", ids, err)
	}
}

func TestSQLHistory_RecordsRunsNewestFirst(t *testing.T) {
	h := openHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 15, 9, 0, 0, 123, time.FixedZone("CEST", 2*3600))

	runs := []Run{
		{ID: "a", Title: "First", Path: "/walls/a.jpg", Mode: ModeOnline, At: base},
		{ID: "b", Title: "Second", Path: "/walls/b.jpg", Mode: ModeDownloaded, At: base.Add(24 * time.Hour)},
		{ID: "c", Title: "Third", Path: "/walls/c.png", Mode: ModeDownloaded, At: base.Add(48 * time.Hour)},
	}
	for _, r := range runs {
		if err := h.Record(ctx, r); err != nil {
			t.Fatalf("Record(%s): %v", r.ID, err)
		}
	}

	last, ok, err := h.Last(ctx)
	if err != nil || !ok {
		t.Fatalf("Last() ok = %v, err = %v", ok, err)
	}
	want := runs[2]
	if last.ID != want.ID || last.Title != want.Title || last.Path != want.Path || last.Mode != want.Mode {
		t.Fatalf("Last() = %+v, want %+v", last, want)
	}
	if !last.At.Equal(want.At) {
		t.Fatalf("Last().At = %v, want %v", last.At, want.At)
	}

	tests := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{2, []string{"c", "b"}},
		{14, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		got, err := h.Recent(ctx, tt.n)
		if err != nil {
			t.Fatalf("Recent(%d): %v", tt.n, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Recent(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
