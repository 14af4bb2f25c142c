package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/diag"
	"github.com/droidheat/amoled/internal/op"
)

type fakeService struct {
	mu        sync.Mutex
	dir       string
	startErr  error
	starts    []string
	existing  map[string]bool
	next      int
	listeners op.Listeners[Event]
}

func newFakeService() *fakeService {
	return &fakeService{dir: "/walls", existing: map[string]bool{}}
}

func (f *fakeService) Start(_ context.Context, url, filename, ext string) (Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return "", f.startErr
	}
	f.starts = append(f.starts, url)
	f.next++
	return Token(fmt.Sprintf("t%d", f.next)), nil
}

func (f *fakeService) Subscribe(fn func(Event)) func() { return f.listeners.Add(fn) }

func (f *fakeService) FileExists(_ context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[path], nil
}

func (f *fakeService) Destination(filename, ext string) string {
	return filepath.Join(f.dir, filename+"."+ext)
}

func (f *fakeService) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts)
}

func (f *fakeService) progress(token Token, percent int) {
	f.listeners.Emit(Event{Token: token, Kind: EventProgress, Percent: percent})
}

func (f *fakeService) complete(token Token, success bool, path string) {
	f.listeners.Emit(Event{Token: token, Kind: EventComplete, Success: success, Path: path})
}

type recordingSink struct {
	mu      sync.Mutex
	reports []diag.Report
}

func (s *recordingSink) Report(r diag.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func newCoordinator(t *testing.T) (*Coordinator, *fakeService, *catalog.Store, *recordingSink) {
	t.Helper()
	svc := newFakeService()
	store := catalog.NewStore(nil, func(string) bool { return true })
	sink := &recordingSink{}
	c := NewCoordinator(svc, store, sink)
	t.Cleanup(c.Close)
	return c, svc, store, sink
}

func testRequest() Request {
	return Request{
		URL:        "https://x/img.jpg",
		Filename:   "Test_Wall_-_abc123",
		Extension:  "jpg",
		Identifier: "abc123",
		Title:      "Test Wall",
		Width:      1080,
		Height:     2340,
	}
}

func TestCoordinator_SuccessfulDownload(t *testing.T) {
	c, svc, store, sink := newCoordinator(t)
	ctx := context.Background()

	h, err := c.Start(ctx, testRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st := c.Snapshot(); st.Status != StatusDownloading || st.Percent != 0 {
		t.Fatalf("state after Start = %+v", st)
	}

	svc.progress("t1", 50)
	if st := c.Snapshot(); st.Percent != 50 {
		t.Fatalf("percent = %d, want 50", st.Percent)
	}

	path := "/x/Test_Wall_-_abc123.jpg"
	svc.complete("t1", true, path)

	st := c.Snapshot()
	if st.Status != StatusComplete || st.Path != path || st.Identifier != "abc123" {
		t.Fatalf("final state = %+v", st)
	}
	res, ok := h.Result()
	if !ok || res.Path != path || res.Err != nil {
		t.Fatalf("handle result = %+v, %v", res, ok)
	}
	entry, ok := store.Get("abc123")
	if !ok || entry.Path != path || entry.Title != "Test Wall" || entry.Width != 1080 {
		t.Fatalf("catalog entry = %+v, %v", entry, ok)
	}
	if sink.count() != 0 {
		t.Fatalf("unexpected diag reports: %d", sink.count())
	}
}

func TestCoordinator_IdempotentRedownload(t *testing.T) {
	c, svc, _, _ := newCoordinator(t)
	ctx := context.Background()

	if _, err := c.Start(ctx, testRequest()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.complete("t1", true, "/x/a.jpg")

	h, err := c.Start(ctx, testRequest())
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	res, ok := h.Result()
	if !ok || res.Path != "/x/a.jpg" {
		t.Fatalf("second result = %+v, %v", res, ok)
	}
	if st := c.Snapshot(); st.Status != StatusComplete || st.Path != "/x/a.jpg" {
		t.Fatalf("state = %+v", st)
	}
	if n := svc.startCount(); n != 1 {
		t.Fatalf("service started %d times, want 1", n)
	}
}

func TestCoordinator_ExistingFileShortCircuits(t *testing.T) {
	c, svc, store, _ := newCoordinator(t)
	req := testRequest()
	dest := svc.Destination(req.Filename, req.Extension)
	svc.existing[dest] = true

	h, err := c.Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res, _ := h.Result(); res.Path != dest {
		t.Fatalf("result path = %q, want %q", res.Path, dest)
	}
	if svc.startCount() != 0 {
		t.Fatal("service should not be asked to download an existing file")
	}
	if _, ok := store.Get(req.Identifier); !ok {
		t.Fatal("existing file was not reconciled into the catalog")
	}
}

func TestCoordinator_ProgressIsMonotonic(t *testing.T) {
	c, svc, _, _ := newCoordinator(t)
	var seen []int
	c.Subscribe(func(st State) {
		if st.Status == StatusDownloading {
			seen = append(seen, st.Percent)
		}
	})

	if _, err := c.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, p := range []int{10, 40, 30, 40, 100, 70} {
		svc.progress("t1", p)
	}

	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("progress went backwards: %v", seen)
		}
	}
	for _, p := range seen {
		if p >= 100 {
			t.Fatalf("progress reached %d before completion: %v", p, seen)
		}
	}
	if got := c.Snapshot().Percent; got != 99 {
		t.Fatalf("percent = %d, want 99", got)
	}
}

func TestCoordinator_IgnoresForeignEvents(t *testing.T) {
	c, svc, store, _ := newCoordinator(t)
	if _, err := c.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.progress("other", 80)
	svc.complete("other", true, "/x/other.jpg")

	st := c.Snapshot()
	if st.Status != StatusDownloading || st.Percent != 0 {
		t.Fatalf("state = %+v, want untouched download", st)
	}
	if store.Len() != 0 {
		t.Fatal("catalog changed by a foreign event")
	}
}

func TestCoordinator_NoProgressAfterCompletion(t *testing.T) {
	c, svc, _, _ := newCoordinator(t)
	if _, err := c.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.complete("t1", true, "/x/a.jpg")
	svc.progress("t1", 60)
	svc.complete("t1", false, "")

	if st := c.Snapshot(); st.Status != StatusComplete {
		t.Fatalf("state = %+v, want complete", st)
	}
}

func TestCoordinator_PermissionDeniedFailsToStart(t *testing.T) {
	c, svc, store, sink := newCoordinator(t)
	svc.startErr = ErrPermission

	h, err := c.Start(context.Background(), testRequest())
	if !errors.Is(err, ErrPermission) {
		t.Fatalf("Start err = %v, want ErrPermission", err)
	}
	if h != nil {
		t.Fatal("handle returned on enqueue failure")
	}
	if st := c.Snapshot(); st.Status != StatusErrorStarting {
		t.Fatalf("state = %+v, want error starting", st)
	}
	if store.Len() != 0 {
		t.Fatal("catalog touched after enqueue failure")
	}
	if sink.count() != 0 {
		t.Fatal("enqueue failures are not reported to diagnostics")
	}
}

func TestCoordinator_InvalidRequest(t *testing.T) {
	c, svc, _, _ := newCoordinator(t)
	req := testRequest()
	req.URL = ""
	if _, err := c.Start(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if c.Snapshot().Status != StatusErrorStarting {
		t.Fatal("invalid request should be an error starting")
	}
	if svc.startCount() != 0 {
		t.Fatal("service called for invalid request")
	}
}

func TestCoordinator_FailedTransfer(t *testing.T) {
	c, svc, store, sink := newCoordinator(t)
	h, err := c.Start(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.progress("t1", 30)
	svc.complete("t1", false, "")

	if st := c.Snapshot(); st.Status != StatusErrorFinishing || st.Err == nil {
		t.Fatalf("state = %+v, want error finishing", st)
	}
	if res, ok := h.Result(); !ok || res.Err == nil {
		t.Fatalf("handle result = %+v, %v", res, ok)
	}
	if store.Len() != 0 {
		t.Fatal("catalog touched after failed transfer")
	}
	if sink.count() != 1 {
		t.Fatalf("diag reports = %d, want 1", sink.count())
	}

	// Retry is a fresh Start.
	if _, err := c.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	if c.Snapshot().Status != StatusDownloading {
		t.Fatal("retry did not start a new download")
	}
}

func TestCoordinator_RejectsOverlappingStart(t *testing.T) {
	c, svc, _, _ := newCoordinator(t)
	if _, err := c.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.progress("t1", 20)

	other := testRequest()
	other.Identifier = "zzz"
	other.Filename = "Other_-_zzz"
	if _, err := c.Start(context.Background(), other); !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
	if st := c.Snapshot(); st.Identifier != "abc123" || st.Percent != 20 {
		t.Fatalf("running download disturbed: %+v", st)
	}
}

func TestCoordinator_ResetAfterCompletion(t *testing.T) {
	c, svc, _, _ := newCoordinator(t)
	if _, err := c.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c.Reset()
	if c.Snapshot().Status != StatusDownloading {
		t.Fatal("Reset must not interrupt a running download")
	}
	svc.complete("t1", false, "")
	c.Reset()
	if st := c.Snapshot(); st.Status != StatusIdle {
		t.Fatalf("state after Reset = %+v", st)
	}
}

func TestCoordinator_MatchesByFilenameBeforeToken(t *testing.T) {
	svc := newFakeService()
	store := catalog.NewStore(nil, func(string) bool { return true })
	c := NewCoordinator(&eagerService{fakeService: svc}, store, nil)
	defer c.Close()

	h, err := c.Start(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	res, ok := h.Result()
	if !ok || res.Err != nil || res.Path != "/x/fast.jpg" {
		t.Fatalf("result = %+v, %v", res, ok)
	}
	if c.Snapshot().Status != StatusComplete {
		t.Fatalf("state = %+v", c.Snapshot())
	}
}

// eagerService finishes the transfer before Start returns its token.
type eagerService struct {
	*fakeService
}

func (e *eagerService) Start(ctx context.Context, url, filename, ext string) (Token, error) {
	token, err := e.fakeService.Start(ctx, url, filename, ext)
	if err != nil {
		return "", err
	}
	e.listeners.Emit(Event{Token: token, Filename: filename, Kind: EventComplete, Success: true, Path: "/x/fast.jpg"})
	return token, nil
}

// failingPersistence loads nothing and refuses every write.
type failingPersistence struct{ err error }

func (p failingPersistence) Load(context.Context) ([]catalog.Entry, error) { return nil, nil }
func (p failingPersistence) Put(context.Context, catalog.Entry) error { return p.err }
func (p failingPersistence) Delete(context.Context, string) error { return p.err }
func (p failingPersistence) ReplaceAll(context.Context, []catalog.Entry) error { return p.err }

func TestCoordinator_CatalogWriteFailureFailsFinishing(t *testing.T) {
	svc := newFakeService()
	diskFull := errors.New("disk full")
	store := catalog.NewStore(failingPersistence{err: diskFull}, func(string) bool { return true })
	sink := &recordingSink{}
	c := NewCoordinator(svc, store, sink)
	t.Cleanup(c.Close)

	h, err := c.Start(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	path := "/walls/Test_Wall_-_abc123.jpg"
	svc.complete("t1", true, path)

	st := c.Snapshot()
	if st.Status != StatusErrorFinishing || !errors.Is(st.Err, diskFull) {
		t.Fatalf("state = %+v, want error-finishing wrapping disk full", st)
	}
	res, ok := h.Result()
	if !ok || !errors.Is(res.Err, diskFull) || res.Path != path {
		t.Fatalf("handle result = %+v, %v", res, ok)
	}
	if store.Contains("abc123") {
		t.Fatal("catalog holds an entry that was never persisted")
	}
	if sink.count() != 1 {
		t.Fatalf("diag reports = %d, want 1", sink.count())
	}
	if got := sink.reports[0]; got.Operation != "download" || got.Identifier != "abc123" || got.Path != path {
		t.Fatalf("report = %+v", got)
	}

	// The failure is terminal for the attempt; a retry starts over.
	if _, err := c.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	if svc.startCount() != 2 {
		t.Fatalf("starts = %d, want 2", svc.startCount())
	}
}
