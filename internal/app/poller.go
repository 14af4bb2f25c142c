package app

import (
	"context"
	"log"
	"time"
)

const (
	defaultUploadInterval = 15 * time.Minute
	maxBackoff            = 2 * time.Hour
)

// uploader ships stored diagnostics; *diag.Recorder implements it.
type uploader interface {
	Upload(ctx context.Context, endpoint string) (int, error)
}

// StartUploader launches a background goroutine that uploads stored error
// logs to endpoint at a fixed cadence, backing off while uploads fail. It
// returns immediately.
func StartUploader(ctx context.Context, up uploader, endpoint string, interval time.Duration) {
	if interval <= 0 {
		interval = defaultUploadInterval
	}
	go func() {
		failures := 0
		for {
			if uploadOnce(ctx, up, endpoint) {
				failures = 0
			} else {
				failures++
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// uploadOnce reports whether the upload succeeded.
func uploadOnce(ctx context.Context, up uploader, endpoint string) bool {
	n, err := up.Upload(ctx, endpoint)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("diag: upload failed: %v", err)
		}
		return false
	}
	if n > 0 {
		log.Printf("diag: uploaded %d error logs", n)
	}
	return true
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
