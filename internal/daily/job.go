package daily

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/droidheat/amoled/internal/apply"
	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/download"
	"github.com/droidheat/amoled/internal/feed"
	"github.com/droidheat/amoled/internal/op"
)

// recentWindow is how many past picks the downloaded rotation avoids.
const recentWindow = 14

// Downloader starts a download; *download.Coordinator implements it.
type Downloader interface {
	Start(ctx context.Context, req download.Request) (*op.Handle[download.Result], error)
}

// Applier sets a wallpaper; *apply.Coordinator implements it.
type Applier interface {
	Apply(ctx context.Context, path string) (*op.Handle[apply.Result], error)
}

// Job performs one daily change: pick a wallpaper, make sure it is on disk,
// set it and record the run.
type Job struct {
	Feed      feed.Source
	Downloads Downloader
	Applier   Applier
	Catalog   *catalog.Store
	History   History
	Marker    string

	// intn picks among catalog entries once all were used recently.
	intn func(n int) int
	now  func() time.Time
}

// Run changes the wallpaper once using mode, and sort for ModeOnline. It
// blocks until the change finished or ctx is done.
func (j *Job) Run(ctx context.Context, mode Mode, sort feed.Sort) (Run, error) {
	var (
		run Run
		err error
	)
	if mode == ModeDownloaded {
		run, err = j.pickDownloaded(ctx)
	} else {
		run, err = j.fetchOnline(ctx, sort)
	}
	if err != nil {
		return Run{}, err
	}

	h, err := j.Applier.Apply(ctx, run.Path)
	if err != nil {
		return Run{}, fmt.Errorf("daily: set %s: %w", run.ID, err)
	}
	res, err := h.Wait(ctx)
	if err != nil {
		return Run{}, err
	}
	if res.Err != nil {
		return Run{}, fmt.Errorf("daily: set %s: %w", run.ID, res.Err)
	}

	run.Mode = mode
	run.At = j.clock()
	if j.History != nil {
		if err := j.History.Record(ctx, run); err != nil {
			log.Printf("daily: %v", err)
		}
	}
	return run, nil
}

// fetchOnline downloads the top post of the feed, or reuses the file when it
// is already in the catalog.
func (j *Job) fetchOnline(ctx context.Context, sort feed.Sort) (Run, error) {
	page, err := j.Feed.Page(ctx, sort, feed.Cursor{})
	if err != nil {
		return Run{}, fmt.Errorf("daily: fetch %s: %w", sort, err)
	}
	if len(page.Records) == 0 {
		return Run{}, fmt.Errorf("%w: %s feed is empty", ErrNothingToSet, sort)
	}
	rec := page.Records[0]

	h, err := j.Downloads.Start(ctx, download.RequestFor(rec, j.Marker))
	if err != nil {
		return Run{}, fmt.Errorf("daily: download %s: %w", rec.ID, err)
	}
	res, err := h.Wait(ctx)
	if err != nil {
		return Run{}, err
	}
	if res.Err != nil {
		return Run{}, fmt.Errorf("daily: download %s: %w", rec.ID, res.Err)
	}
	return Run{ID: rec.ID, Title: rec.DisplayTitle(), Path: res.Path}, nil
}

// pickDownloaded returns the oldest catalog entry not among the recent
// picks, or a random entry when every one was used recently.
func (j *Job) pickDownloaded(ctx context.Context) (Run, error) {
	entries := j.Catalog.List(catalog.OldestFirst)
	if len(entries) == 0 {
		return Run{}, fmt.Errorf("%w: nothing downloaded yet", ErrNothingToSet)
	}

	recent := map[string]bool{}
	if j.History != nil {
		ids, err := j.History.Recent(ctx, recentWindow)
		if err != nil {
			log.Printf("daily: %v", err)
		}
		for _, id := range ids {
			recent[id] = true
		}
	}

	pick := entries[0]
	found := false
	for _, e := range entries {
		if !recent[e.ID] {
			pick, found = e, true
			break
		}
	}
	if !found {
		pick = entries[j.random(len(entries))]
	}
	return Run{ID: pick.ID, Title: pick.Title, Path: pick.Path}, nil
}

func (j *Job) random(n int) int {
	if j.intn != nil {
		return j.intn(n)
	}
	return rand.Intn(n)
}

func (j *Job) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}
