package daily

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/droidheat/amoled/internal/apply"
	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/download"
	"github.com/droidheat/amoled/internal/feed"
	"github.com/droidheat/amoled/internal/op"
	"github.com/droidheat/amoled/internal/wallpaper"
)

type fakeFeed struct {
	mu      sync.Mutex
	records []wallpaper.Record
	err     error
	sorts   []feed.Sort
}

func (f *fakeFeed) Page(_ context.Context, sort feed.Sort, _ feed.Cursor) (feed.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sorts = append(f.sorts, sort)
	if f.err != nil {
		return feed.Page{}, f.err
	}
	return feed.Page{Records: f.records, Number: 1}, nil
}

func (f *fakeFeed) Search(context.Context, string, feed.Cursor) (feed.Page, error) {
	return feed.Page{}, errors.New("search not used")
}

// fakeDownloads resolves every request at once with a path under /walls.
type fakeDownloads struct {
	mu   sync.Mutex
	reqs []download.Request
	err  error
}

func (f *fakeDownloads) Start(_ context.Context, req download.Request) (*op.Handle[download.Result], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return op.Resolved(download.Result{Err: f.err}), nil
	}
	return op.Resolved(download.Result{Path: "/walls/" + req.Filename + "." + req.Extension}), nil
}

type fakeApplier struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeApplier) Apply(_ context.Context, path string) (*op.Handle[apply.Result], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return op.Resolved(apply.Result{Path: path, Err: f.err}), nil
}

func (f *fakeApplier) applied() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

type memHistory struct {
	mu   sync.Mutex
	runs []Run
}

func (h *memHistory) Last(context.Context) (Run, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.runs) == 0 {
		return Run{}, false, nil
	}
	return h.runs[len(h.runs)-1], true, nil
}

func (h *memHistory) Recent(_ context.Context, n int) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []string
	for i := len(h.runs) - 1; i >= 0 && len(ids) < n; i-- {
		ids = append(ids, h.runs[i].ID)
	}
	return ids, nil
}

func (h *memHistory) Record(_ context.Context, run Run) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append(h.runs, run)
	return nil
}

func newCatalog(t *testing.T, ids ...string) *catalog.Store {
	t.Helper()
	store := catalog.NewStore(nil, func(string) bool { return true })
	for _, id := range ids {
		if err := store.Add(context.Background(), catalog.Entry{ID: id, Title: "Wall " + id, Path: "/walls/" + id + ".jpg"}); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}
	return store
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
}

func TestJob_OnlineDownloadsTopPostAndSetsIt(t *testing.T) {
	src := &fakeFeed{records: []wallpaper.Record{
		{ID: "abc123", Title: "Test Wall", Image: wallpaper.Image{URL: "https://x/img.jpg", Width: 1080, Height: 2340}},
		{ID: "second", Title: "Other", Image: wallpaper.Image{URL: "https://x/other.png"}},
	}}
	downloads := &fakeDownloads{}
	applier := &fakeApplier{}
	history := &memHistory{}
	job := &Job{Feed: src, Downloads: downloads, Applier: applier, History: history, Marker: "_amoled_droidheat", now: fixedClock}

	run, err := job.Run(context.Background(), ModeOnline, feed.SortTopWeek)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(src.sorts, []feed.Sort{feed.SortTopWeek}) {
		t.Fatalf("feed sorts = %v", src.sorts)
	}
	if len(downloads.reqs) != 1 {
		t.Fatalf("downloads = %d, want 1", len(downloads.reqs))
	}
	req := downloads.reqs[0]
	if req.Identifier != "abc123" || req.URL != "https://x/img.jpg" || req.Width != 1080 {
		t.Fatalf("request = %+v", req)
	}
	if got := applier.applied(); len(got) != 1 || got[0] != run.Path {
		t.Fatalf("applied = %v, want [%s]", got, run.Path)
	}
	want := Run{ID: "abc123", Title: "Test Wall", Path: run.Path, Mode: ModeOnline, At: fixedClock()}
	if run != want {
		t.Fatalf("run = %+v, want %+v", run, want)
	}
	if last, ok, _ := history.Last(context.Background()); !ok || last != want {
		t.Fatalf("history last = %+v, %v", last, ok)
	}
}

func TestJob_OnlineFailures(t *testing.T) {
	rec := wallpaper.Record{ID: "abc123", Title: "Test Wall", Image: wallpaper.Image{URL: "https://x/img.jpg"}}

	tests := []struct {
		name      string
		feed      *fakeFeed
		downloads *fakeDownloads
		applier   *fakeApplier
		nothing   bool
	}{
		{"feed error", &fakeFeed{err: errors.New("503")}, &fakeDownloads{}, &fakeApplier{}, false},
		{"empty feed", &fakeFeed{}, &fakeDownloads{}, &fakeApplier{}, true},
		{"download fails", &fakeFeed{records: []wallpaper.Record{rec}}, &fakeDownloads{err: errors.New("disk full")}, &fakeApplier{}, false},
		{"apply fails", &fakeFeed{records: []wallpaper.Record{rec}}, &fakeDownloads{}, &fakeApplier{err: errors.New("no display")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &memHistory{}
			job := &Job{Feed: tt.feed, Downloads: tt.downloads, Applier: tt.applier, History: history}

			_, err := job.Run(context.Background(), ModeOnline, feed.SortHot)
			if err == nil {
				t.Fatal("Run returned nil error")
			}
			if errors.Is(err, ErrNothingToSet) != tt.nothing {
				t.Fatalf("err = %v, ErrNothingToSet = %v", err, tt.nothing)
			}
			if _, ok, _ := history.Last(context.Background()); ok {
				t.Fatal("failed run was recorded")
			}
		})
	}
}

func TestJob_DownloadedRotation(t *testing.T) {
	tests := []struct {
		name   string
		recent []string
		random int
		want   string
	}{
		{"fresh catalog takes oldest", nil, 0, "a"},
		{"skips recent picks", []string{"b", "a"}, 0, "c"},
		{"all recent picks random", []string{"c", "b", "a"}, 1, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &memHistory{}
			for i := len(tt.recent) - 1; i >= 0; i-- {
				history.runs = append(history.runs, Run{ID: tt.recent[i]})
			}
			applier := &fakeApplier{}
			job := &Job{
				Catalog: newCatalog(t, "a", "b", "c"),
				Applier: applier,
				History: history,
				intn:    func(int) int { return tt.random },
				now:     fixedClock,
			}

			run, err := job.Run(context.Background(), ModeDownloaded, feed.SortHot)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if run.ID != tt.want || run.Path != "/walls/"+tt.want+".jpg" || run.Mode != ModeDownloaded {
				t.Fatalf("run = %+v, want %s", run, tt.want)
			}
			if got := applier.applied(); len(got) != 1 || got[0] != run.Path {
				t.Fatalf("applied = %v", got)
			}
		})
	}
}

func TestJob_DownloadedEmptyCatalog(t *testing.T) {
	job := &Job{Catalog: newCatalog(t), Applier: &fakeApplier{}, History: &memHistory{}}
	if _, err := job.Run(context.Background(), ModeDownloaded, feed.SortHot); !errors.Is(err, ErrNothingToSet) {
		t.Fatalf("err = %v, want ErrNothingToSet", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"online":       ModeOnline,
		" Downloaded ": ModeDownloaded,
		"":             ModeOnline,
		"weekly":       ModeOnline,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", in, got, want)
		}
		if got := ParseMode(want.String()); got != want {
			t.Errorf("ParseMode(%q) did not round-trip", want.String())
		}
	}
	if ModeOnline.Next() != ModeDownloaded || ModeDownloaded.Next() != ModeOnline {
		t.Fatal("Next does not alternate")
	}
}
