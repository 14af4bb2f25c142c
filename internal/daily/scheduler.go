package daily

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/droidheat/amoled/internal/diag"
	"github.com/droidheat/amoled/internal/feed"
	"github.com/droidheat/amoled/internal/op"
)

const (
	defaultInterval  = 24 * time.Hour
	defaultRetryBase = 5 * time.Minute
)

// runner is the work done on each tick; *Job implements it.
type runner interface {
	Run(ctx context.Context, mode Mode, sort feed.Sort) (Run, error)
}

// Scheduler runs a Job once per interval while enabled. The schedule is
// anchored on the last recorded run, so restarting the program does not
// change the wallpaper again before the interval has passed.
type Scheduler struct {
	job       runner
	history   History
	sink      diag.Sink
	interval  time.Duration
	retryBase time.Duration
	now       func() time.Time

	mu          sync.Mutex
	settings    Settings
	status      Status
	runNow      bool
	failures    int
	lastAttempt time.Time

	wake      chan struct{}
	listeners op.Listeners[Status]
	wg        sync.WaitGroup
}

// NewScheduler returns a scheduler with the saved settings. It does nothing
// until Start. A zero interval means once a day; a nil sink discards
// reports.
func NewScheduler(job runner, history History, sink diag.Sink, settings Settings, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if sink == nil {
		sink = diag.Discard
	}
	s := &Scheduler{
		job:       job,
		history:   history,
		sink:      sink,
		interval:  interval,
		retryBase: defaultRetryBase,
		now:       time.Now,
		settings:  settings,
		wake:      make(chan struct{}, 1),
	}
	s.status.Settings = settings
	return s
}

// Status returns the current status.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe registers fn for status changes.
func (s *Scheduler) Subscribe(fn func(Status)) func() {
	return s.listeners.Add(fn)
}

// Configure replaces the settings. Turning the feature on changes the
// wallpaper right away and starts a fresh day from there.
func (s *Scheduler) Configure(set Settings) {
	s.mu.Lock()
	if set.Enabled && !s.settings.Enabled {
		s.runNow = true
	}
	if !set.Enabled {
		s.runNow = false
		s.failures = 0
	}
	s.settings = set
	s.status.Settings = set
	s.status.NextRun = s.nextRunLocked()
	st := s.status
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.listeners.Emit(st)
}

// Start loads the last run and launches the timer goroutine. It returns
// immediately; the goroutine exits when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if s.history != nil {
		last, ok, err := s.history.Last(ctx)
		if err != nil {
			log.Printf("daily: load history: %v", err)
		}
		if ok {
			s.mu.Lock()
			s.status.LastRun = last
			s.mu.Unlock()
		}
	}
	s.wg.Add(1)
	go s.loop(ctx)
}

// Wait blocks until the goroutine launched by Start has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		enabled := s.settings.Enabled
		next := s.nextRunLocked()
		s.status.NextRun = next
		s.mu.Unlock()

		var fire <-chan time.Time
		var timer *time.Timer
		if enabled {
			timer = time.NewTimer(max(0, next.Sub(s.now())))
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return
		case <-s.wake:
			stopTimer(timer)
		case <-fire:
			s.runOnce(ctx)
		}
	}
}

// nextRunLocked returns when the next change is due, or zero while
// disabled. Called with s.mu held.
func (s *Scheduler) nextRunLocked() time.Time {
	if !s.settings.Enabled {
		return time.Time{}
	}
	now := s.now()
	switch {
	case s.runNow:
		return now
	case s.failures > 0:
		return s.lastAttempt.Add(retryDelay(s.failures, s.retryBase, s.interval))
	case s.status.LastRun.At.IsZero():
		return now
	default:
		return s.status.LastRun.At.Add(s.interval)
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	set := s.settings
	if !set.Enabled {
		s.mu.Unlock()
		return
	}
	s.runNow = false
	s.status.Running = true
	st := s.status
	s.mu.Unlock()
	s.listeners.Emit(st)

	run, err := s.job.Run(ctx, set.Mode, set.Sort)
	if err != nil && ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.status.Running = false
	s.lastAttempt = s.now()
	if err != nil {
		s.failures++
		s.status.LastErr = err
	} else {
		s.failures = 0
		s.status.LastRun = run
		s.status.LastErr = nil
	}
	s.status.NextRun = s.nextRunLocked()
	st = s.status
	s.mu.Unlock()
	s.listeners.Emit(st)

	if err == nil {
		log.Printf("daily: set %s (%s, %s)", run.ID, set.Mode, run.Path)
		return
	}
	log.Printf("daily: change failed: %v", err)
	if !errors.Is(err, ErrNothingToSet) {
		s.sink.Report(diag.Report{
			Title:     "Daily wallpaper failed",
			Operation: "daily",
			Detail:    err.Error(),
			Params:    map[string]string{"mode": set.Mode.String(), "sort": set.Sort.String()},
		})
	}
}

// retryDelay doubles base per consecutive failure, capped at limit.
func retryDelay(failures int, base, limit time.Duration) time.Duration {
	d := base
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	return min(d, limit)
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
