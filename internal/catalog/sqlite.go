package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/droidheat/amoled/internal/storage"
)

// SQLPersistence stores catalog entries in the downloads table. Rows keep
// their insertion sequence across updates, so Load preserves catalog order.
type SQLPersistence struct {
	db *storage.DB
}

var _ Persistence = (*SQLPersistence)(nil)

// NewSQLPersistence returns persistence backed by db.
func NewSQLPersistence(db *storage.DB) *SQLPersistence {
	return &SQLPersistence{db: db}
}

func (p *SQLPersistence) Load(ctx context.Context) ([]Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, title, path, width, height, added_at
		FROM downloads
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query downloads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e             Entry
			width, height sql.NullInt64
			addedAt       string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Path, &width, &height, &addedAt); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		e.Width = int(width.Int64)
		e.Height = int(height.Int64)
		if t, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
			e.AddedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate downloads: %w", err)
	}
	return entries, nil
}

const upsertDownload = `
	INSERT INTO downloads (id, title, path, width, height, added_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		path = excluded.path,
		width = excluded.width,
		height = excluded.height,
		added_at = excluded.added_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putEntry(ctx context.Context, x execer, e Entry) error {
	_, err := x.ExecContext(ctx, upsertDownload,
		e.ID, e.Title, e.Path,
		nullDimension(e.Width), nullDimension(e.Height),
		e.AddedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (p *SQLPersistence) Put(ctx context.Context, e Entry) error {
	if err := putEntry(ctx, p.db, e); err != nil {
		return fmt.Errorf("upsert download %s: %w", e.ID, err)
	}
	return nil
}

func (p *SQLPersistence) Delete(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM downloads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete download %s: %w", id, err)
	}
	return nil
}

func (p *SQLPersistence) ReplaceAll(ctx context.Context, entries []Entry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM downloads`); err != nil {
		return fmt.Errorf("clear downloads: %w", err)
	}
	for _, e := range entries {
		if err := putEntry(ctx, tx, e); err != nil {
			return fmt.Errorf("insert download %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Zero means unknown and is stored as NULL.
func nullDimension(v int) sql.NullInt64 {
	if v <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
