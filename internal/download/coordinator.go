package download

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/diag"
	"github.com/droidheat/amoled/internal/op"
	"github.com/droidheat/amoled/internal/wallpaper"
)

type pending struct {
	req    Request
	dest   string
	token  Token
	handle *op.Handle[Result]
}

// Coordinator tracks one download at a time for a single view.
type Coordinator struct {
	svc        Service
	catalog    *catalog.Store
	sink       diag.Sink
	dimensions func(path string) (int, int, error)

	mu       sync.Mutex
	state    State
	starting bool
	pending  *pending

	listeners   op.Listeners[State]
	unsubscribe func()
}

// NewCoordinator subscribes to svc and records finished downloads in store.
// A nil sink discards reports.
func NewCoordinator(svc Service, store *catalog.Store, sink diag.Sink) *Coordinator {
	if sink == nil {
		sink = diag.Discard
	}
	c := &Coordinator{
		svc:        svc,
		catalog:    store,
		sink:       sink,
		dimensions: wallpaper.ImageDimensions,
	}
	c.unsubscribe = svc.Subscribe(c.handleEvent)
	return c
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for state changes.
func (c *Coordinator) Subscribe(fn func(State)) func() {
	return c.listeners.Add(fn)
}

// Close detaches from the service. Events for a transfer still running are
// no longer observed.
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Reset returns a finished or failed coordinator to idle. It does nothing
// while a download is running.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	if c.starting || c.state.Status == StatusDownloading || c.state.Status == StatusIdle {
		c.mu.Unlock()
		return
	}
	c.state = State{}
	st := c.state
	c.mu.Unlock()
	c.listeners.Emit(st)
}

// Start begins downloading req. It returns a handle resolved once with the
// outcome. If the wallpaper is already in the catalog or on disk the handle
// is resolved immediately and nothing is fetched.
//
// Enqueue failures move the coordinator to StatusErrorStarting and are
// returned. A second Start while one is running returns ErrBusy and leaves
// the running download untouched.
func (c *Coordinator) Start(ctx context.Context, req Request) (*op.Handle[Result], error) {
	c.mu.Lock()
	if c.starting || c.state.Status == StatusDownloading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.starting = true
	c.mu.Unlock()

	if err := validate(req); err != nil {
		c.fail(req.Identifier, StatusErrorStarting, err)
		return nil, err
	}

	dest := c.svc.Destination(req.Filename, req.Extension)
	if path, ok := c.existing(ctx, req, dest); ok {
		res := Result{Path: path}
		c.finish(State{Status: StatusComplete, Identifier: req.Identifier, Percent: 100, Path: path})
		return op.Resolved(res), nil
	}

	p := &pending{req: req, dest: dest, handle: op.New[Result]()}
	c.mu.Lock()
	c.pending = p
	c.state = State{Status: StatusDownloading, Identifier: req.Identifier}
	st := c.state
	c.mu.Unlock()
	c.listeners.Emit(st)

	token, err := c.svc.Start(ctx, req.URL, req.Filename, req.Extension)
	if err != nil {
		err = fmt.Errorf("start download %s: %w", req.Identifier, err)
		c.mu.Lock()
		owned := c.pending == p
		if owned {
			c.pending = nil
		}
		c.mu.Unlock()
		if owned {
			c.fail(req.Identifier, StatusErrorStarting, err)
		}
		p.handle.Resolve(Result{Err: err})
		return nil, err
	}

	c.mu.Lock()
	if c.pending == p {
		p.token = token
	}
	c.starting = false
	c.mu.Unlock()
	return p.handle, nil
}

// existing reports a path for a wallpaper that needs no download, adding a
// catalog entry for a file found on disk without one.
func (c *Coordinator) existing(ctx context.Context, req Request, dest string) (string, bool) {
	if entry, ok := c.catalog.Get(req.Identifier); ok {
		return entry.Path, true
	}
	found, err := c.svc.FileExists(ctx, dest)
	if err != nil {
		log.Printf("download: check %s: %v", dest, err)
		return "", false
	}
	if !found {
		return "", false
	}
	if err := c.catalog.Add(ctx, c.entryFor(req, dest)); err != nil {
		log.Printf("download: reconcile %s into catalog: %v", req.Identifier, err)
	}
	return dest, true
}

func (c *Coordinator) handleEvent(ev Event) {
	c.mu.Lock()
	p := c.pending
	if p == nil || !p.matches(ev) {
		c.mu.Unlock()
		return
	}

	switch ev.Kind {
	case EventProgress:
		percent := min(ev.Percent, 99)
		if c.state.Status != StatusDownloading || percent <= c.state.Percent {
			c.mu.Unlock()
			return
		}
		c.state.Percent = percent
		st := c.state
		c.mu.Unlock()
		c.listeners.Emit(st)

	case EventComplete:
		c.pending = nil
		c.mu.Unlock()
		c.complete(p, ev)

	default:
		c.mu.Unlock()
	}
}

func (c *Coordinator) complete(p *pending, ev Event) {
	id := p.req.Identifier
	if !ev.Success {
		err := ev.Err
		if err == nil {
			err = fmt.Errorf("download %s did not complete", id)
		}
		c.report(p, ev.Path, err)
		c.fail(id, StatusErrorFinishing, err)
		p.handle.Resolve(Result{Err: err})
		return
	}

	path := ev.Path
	if path == "" {
		path = p.dest
	}
	if err := c.catalog.Add(context.Background(), c.entryFor(p.req, path)); err != nil {
		err = fmt.Errorf("record download %s: %w", id, err)
		c.report(p, path, err)
		c.fail(id, StatusErrorFinishing, err)
		p.handle.Resolve(Result{Path: path, Err: err})
		return
	}

	c.finish(State{Status: StatusComplete, Identifier: id, Percent: 100, Path: path})
	p.handle.Resolve(Result{Path: path})
}

func (c *Coordinator) entryFor(req Request, path string) catalog.Entry {
	w, h := req.Width, req.Height
	if w <= 0 || h <= 0 {
		pw, ph, err := c.dimensions(path)
		if err != nil {
			log.Printf("download: dimensions of %s unknown: %v", path, err)
		} else {
			w, h = pw, ph
		}
	}
	title := req.Title
	if title == "" {
		title = req.Filename
	}
	return catalog.Entry{ID: req.Identifier, Title: title, Path: path, Width: w, Height: h}
}

func (c *Coordinator) report(p *pending, path string, err error) {
	c.sink.Report(diag.Report{
		Title:      "Download failed",
		Operation:  "download",
		Identifier: p.req.Identifier,
		Path:       path,
		Detail:     err.Error(),
		Params:     map[string]string{"url": p.req.URL, "filename": p.req.Filename},
	})
}

func (c *Coordinator) fail(id string, status Status, err error) {
	c.finish(State{Status: status, Identifier: id, Err: err})
}

func (c *Coordinator) finish(st State) {
	c.mu.Lock()
	c.state = st
	c.starting = false
	c.mu.Unlock()
	c.listeners.Emit(st)
}

func (p *pending) matches(ev Event) bool {
	if p.token != "" {
		return ev.Token == p.token
	}
	return ev.Filename == p.req.Filename
}

func validate(req Request) error {
	switch {
	case strings.TrimSpace(req.URL) == "":
		return fmt.Errorf("%w: missing url", ErrInvalidRequest)
	case strings.TrimSpace(req.Filename) == "":
		return fmt.Errorf("%w: missing filename", ErrInvalidRequest)
	case strings.TrimSpace(req.Identifier) == "":
		return fmt.Errorf("%w: missing identifier", ErrInvalidRequest)
	}
	return nil
}
