package daily

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/droidheat/amoled/internal/storage"
)

// History remembers past runs so the schedule survives restarts and the
// downloaded rotation can avoid recent picks.
type History interface {
	// Last returns the most recent run; ok is false when there is none.
	Last(ctx context.Context) (run Run, ok bool, err error)
	// Recent returns the identifiers of up to n runs, newest first.
	Recent(ctx context.Context, n int) ([]string, error)
	Record(ctx context.Context, run Run) error
}

// SQLHistory stores runs in the daily_runs table.
type SQLHistory struct {
	db *storage.DB
}

var _ History = (*SQLHistory)(nil)

func NewSQLHistory(db *storage.DB) *SQLHistory {
	return &SQLHistory{db: db}
}

func (h *SQLHistory) Last(ctx context.Context) (Run, bool, error) {
	var (
		run   Run
		mode  string
		ranAt string
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT wallpaper_id, title, path, mode, ran_at
		FROM daily_runs ORDER BY seq DESC LIMIT 1`).
		Scan(&run.ID, &run.Title, &run.Path, &mode, &ranAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("query last daily run: %w", err)
	}
	run.Mode = ParseMode(mode)
	at, err := time.Parse(time.RFC3339Nano, ranAt)
	if err != nil {
		return Run{}, false, fmt.Errorf("parse daily run time %q: %w", ranAt, err)
	}
	run.At = at
	return run, true, nil
}

func (h *SQLHistory) Recent(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT wallpaper_id FROM daily_runs ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent daily runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan daily run: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (h *SQLHistory) Record(ctx context.Context, run Run) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO daily_runs (wallpaper_id, title, path, mode, ran_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Title, run.Path, run.Mode.String(), run.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record daily run %s: %w", run.ID, err)
	}
	return nil
}
