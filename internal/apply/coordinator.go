package apply

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/droidheat/amoled/internal/diag"
	"github.com/droidheat/amoled/internal/op"
)

// maxOrphans bounds how many abandoned changes are remembered while their
// events are outstanding.
const maxOrphans = 8

type attempt struct {
	token  Token
	path   string
	handle *op.Handle[Result]
}

// Coordinator runs one wallpaper change at a time and exposes it as State.
// It accepts both binding conventions: an outcome returned by SetWallpaper
// and a ChangeEvent delivered later. Whichever arrives first wins.
type Coordinator struct {
	svc  Service
	sink diag.Sink

	mu      sync.Mutex
	state   State
	pending *attempt
	// orphans are changes dropped by Reset that may still report, oldest
	// first.
	orphans []*attempt

	listeners   op.Listeners[State]
	unsubscribe func()
}

// NewCoordinator subscribes to svc. A nil sink discards reports.
func NewCoordinator(svc Service, sink diag.Sink) *Coordinator {
	if sink == nil {
		sink = diag.Discard
	}
	c := &Coordinator{svc: svc, sink: sink}
	c.unsubscribe = svc.Subscribe(c.handleEvent)
	return c
}

func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Subscribe(fn func(State)) func() {
	return c.listeners.Add(fn)
}

func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Apply starts setting path as the wallpaper. The returned handle resolves
// once with the outcome. While another change is in flight Apply returns
// ErrBusy and leaves it alone.
func (c *Coordinator) Apply(ctx context.Context, path string) (*op.Handle[Result], error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}

	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	a := &attempt{token: Token(uuid.NewString()), path: path, handle: op.New[Result]()}
	c.pending = a
	c.state = State{Status: StatusApplying, Path: path}
	st := c.state
	c.mu.Unlock()
	c.listeners.Emit(st)

	outcome, err := c.svc.SetWallpaper(ctx, a.token, path)
	if err != nil || outcome != OutcomePending {
		// No event will follow, even if Reset abandoned a meanwhile.
		c.mu.Lock()
		c.dropOrphan(func(o *attempt) bool { return o == a })
		c.mu.Unlock()
	}
	switch {
	case err != nil:
		err = fmt.Errorf("apply %s: %w", path, err)
		c.resolve(a, err, false)
		return nil, err
	case outcome == OutcomeSucceeded:
		c.resolve(a, nil, true)
	case outcome == OutcomeFailed:
		c.resolve(a, errors.New("wallpaper service reported failure"), true)
	}
	return a.handle, nil
}

// Reset forgets the tracked change and returns to idle. A change still
// running in the platform is not cancelled; its late event is ignored.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	if c.pending == nil && c.state.Status == StatusIdle {
		c.mu.Unlock()
		return
	}
	abandoned := c.pending
	c.pending = nil
	c.state = State{}
	if abandoned != nil {
		c.orphans = append(c.orphans, abandoned)
		if len(c.orphans) > maxOrphans {
			c.orphans = slices.Delete(c.orphans, 0, len(c.orphans)-maxOrphans)
		}
	}
	c.mu.Unlock()

	if abandoned != nil {
		abandoned.handle.Resolve(Result{Path: abandoned.path, Err: context.Canceled})
	}
	c.listeners.Emit(State{})
}

func (c *Coordinator) handleEvent(ev ChangeEvent) {
	c.mu.Lock()
	a := c.claim(ev)
	c.mu.Unlock()
	if a == nil {
		return
	}
	var err error
	if !ev.Success {
		err = ev.Err
		if err == nil {
			err = errors.New("wallpaper change failed")
		}
	}
	c.resolve(a, err, true)
}

// claim returns the pending attempt ev settles, or nil when ev belongs to an
// abandoned change or to nothing. Tokened events match exactly. Events
// without a token are charged to the oldest abandoned change they could
// belong to before they may settle the pending one. Called with c.mu held.
func (c *Coordinator) claim(ev ChangeEvent) *attempt {
	if ev.Token != "" {
		c.dropOrphan(func(o *attempt) bool { return o.token == ev.Token })
		if c.pending != nil && c.pending.token == ev.Token {
			return c.pending
		}
		return nil
	}
	if c.dropOrphan(func(o *attempt) bool { return ev.Path == "" || o.path == ev.Path }) {
		return nil
	}
	if c.pending != nil && (ev.Path == "" || ev.Path == c.pending.path) {
		return c.pending
	}
	return nil
}

// dropOrphan removes the oldest orphan matching fn and reports whether one
// was found. Called with c.mu held.
func (c *Coordinator) dropOrphan(fn func(*attempt) bool) bool {
	i := slices.IndexFunc(c.orphans, fn)
	if i < 0 {
		return false
	}
	c.orphans = slices.Delete(c.orphans, i, i+1)
	return true
}

// resolve settles a if it is still the tracked attempt. Execution failures
// go to the diagnostic sink.
func (c *Coordinator) resolve(a *attempt, err error, execution bool) {
	c.mu.Lock()
	if c.pending != a {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	if err != nil {
		c.state = State{Status: StatusError, Path: a.path, Err: err}
	} else {
		c.state = State{Status: StatusApplied, Path: a.path}
	}
	st := c.state
	c.mu.Unlock()

	c.listeners.Emit(st)
	a.handle.Resolve(Result{Path: a.path, Err: err})
	if err != nil && execution {
		c.sink.Report(diag.Report{
			Title:     "Set wallpaper failed",
			Operation: "apply",
			Path:      a.path,
			Detail:    err.Error(),
		})
	}
}
