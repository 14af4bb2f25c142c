package diag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/droidheat/amoled/internal/storage"
)

const (
	defaultAppName    = "AmoledBackgrounds"
	defaultBufferSize = 64
	maxFieldLength    = 200
)

// Options configures a Recorder.
type Options struct {
	AppName string
	// DeviceID identifies this installation in uploaded logs.
	DeviceID   string
	BufferSize int
	HTTPClient *http.Client
}

// Entry is a stored error log row in its upload shape.
type Entry struct {
	ID               int64  `json:"-"`
	ReportID         string `json:"report_id"`
	AppName          string `json:"app_name"`
	ErrorTitle       string `json:"error_title"`
	Description      string `json:"description"`
	Operation        string `json:"operation"`
	Params           string `json:"params"`
	Severity         string `json:"severity"`
	TimestampOccured string `json:"timestamp_occured"`
	Identifier       string `json:"identifier"`
	DevicePlatform   string `json:"device_platform"`
}

// Recorder persists reports to the errorlogs table on a background
// goroutine. Report never blocks: when the buffer is full the report is
// logged and dropped.
type Recorder struct {
	db       *storage.DB
	appName  string
	deviceID string
	client   *http.Client
	now      func() time.Time

	mu      sync.RWMutex
	closed  bool
	reports chan Report
	done    chan struct{}
}

var _ Sink = (*Recorder)(nil)

// NewRecorder starts a recorder writing to db.
func NewRecorder(db *storage.DB, opts Options) *Recorder {
	if opts.AppName == "" {
		opts.AppName = defaultAppName
	}
	if opts.DeviceID == "" {
		opts.DeviceID = uuid.NewString()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	r := &Recorder{
		db:       db,
		appName:  opts.AppName,
		deviceID: opts.DeviceID,
		client:   client,
		now:      time.Now,
		reports:  make(chan Report, opts.BufferSize),
		done:     make(chan struct{}),
	}
	go r.loop()
	return r
}

// Report queues rep for storage.
func (r *Recorder) Report(rep Report) {
	if rep.OccurredAt.IsZero() {
		rep.OccurredAt = r.now()
	}
	if rep.Severity == "" {
		rep.Severity = SeverityError
	}
	log.Printf("diag: %s %s failed: %s", rep.Operation, rep.Identifier, rep.Detail)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.reports <- rep:
	default:
		log.Printf("diag: buffer full, dropping %s report", rep.Operation)
	}
}

// Close stops accepting reports and waits for queued ones to be written.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.reports)
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) loop() {
	defer close(r.done)
	for rep := range r.reports {
		if err := r.insert(context.Background(), rep); err != nil {
			log.Printf("diag: store report failed: %v", err)
		}
	}
}

func (r *Recorder) insert(ctx context.Context, rep Report) error {
	title := rep.Title
	if title == "" {
		title = rep.Operation + " failed"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO errorlogs (
			report_id, app_name, error_title, description, operation,
			params, severity, timestamp_occured, identifier, device_platform
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		clip(r.appName),
		clip(title),
		rep.Detail,
		clip(rep.Operation),
		rep.params(),
		clip(string(rep.Severity)),
		rep.OccurredAt.UTC().Format(time.RFC3339),
		r.deviceID,
		runtime.GOOS+"/"+runtime.GOARCH,
	)
	if err != nil {
		return fmt.Errorf("insert error log: %w", err)
	}
	return nil
}

// Entries returns the stored logs, oldest first.
func (r *Recorder) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, report_id, app_name, error_title, description, operation,
			COALESCE(params, ''), severity, timestamp_occured, identifier, device_platform
		FROM errorlogs
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query error logs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ReportID, &e.AppName, &e.ErrorTitle, &e.Description,
			&e.Operation, &e.Params, &e.Severity, &e.TimestampOccured, &e.Identifier, &e.DevicePlatform); err != nil {
			return nil, fmt.Errorf("scan error log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Upload posts every stored log to endpoint as a JSON array and deletes the
// uploaded rows once the endpoint accepts them. It returns the number of
// logs sent.
func (r *Recorder) Upload(ctx context.Context, endpoint string) (int, error) {
	if strings.TrimSpace(endpoint) == "" {
		return 0, nil
	}
	entries, err := r.Entries(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("encode error logs: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload error logs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("upload error logs: unexpected status %s", resp.Status)
	}

	last := entries[len(entries)-1].ID
	if _, err := r.db.ExecContext(ctx, `DELETE FROM errorlogs WHERE id <= ?`, last); err != nil {
		return len(entries), fmt.Errorf("delete uploaded logs: %w", err)
	}
	return len(entries), nil
}

func clip(s string) string {
	if len(s) <= maxFieldLength {
		return s
	}
	return s[:maxFieldLength]
}
