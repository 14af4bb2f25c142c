package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/droidheat/amoled/internal/op"
)

const (
	stagingSuffix           = ".download"
	defaultProgressInterval = 200 * time.Millisecond
	userAgent               = "amoled/1.0"
)

// HTTPOptions tunes an HTTPService.
type HTTPOptions struct {
	Client *http.Client
	// Timeout bounds a whole transfer. Zero means no deadline.
	Timeout time.Duration
	// ProgressInterval throttles progress events.
	ProgressInterval time.Duration
}

// HTTPService downloads over HTTP into a single directory.
type HTTPService struct {
	dir      string
	client   *http.Client
	timeout  time.Duration
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]Token

	listeners op.Listeners[Event]
}

var _ Service = (*HTTPService)(nil)

// NewHTTPService returns a service writing into dir.
func NewHTTPService(dir string, opts HTTPOptions) *HTTPService {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = defaultProgressInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPService{
		dir:      dir,
		client:   client,
		timeout:  opts.Timeout,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]Token),
	}
}

// Dir returns the destination directory.
func (s *HTTPService) Dir() string {
	return s.dir
}

func (s *HTTPService) Destination(filename, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return filepath.Join(s.dir, filename)
	}
	return filepath.Join(s.dir, filename+"."+ext)
}

func (s *HTTPService) FileExists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

func (s *HTTPService) Subscribe(fn func(Event)) func() {
	return s.listeners.Add(fn)
}

// Start validates the request, checks the destination is writable and
// launches the transfer in the background.
func (s *HTTPService) Start(_ context.Context, rawURL, filename, ext string) (Token, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: malformed url %q", ErrInvalidRequest, rawURL)
	}
	if strings.TrimSpace(filename) == "" || strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("%w: bad filename %q", ErrInvalidRequest, filename)
	}
	if err := s.Permission(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("download service closed")
	}
	if _, busy := s.inflight[filename]; busy {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrInFlight, filename)
	}
	token := Token(uuid.NewString())
	s.inflight[filename] = token
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(token, u.String(), filename, s.Destination(filename, ext))
	return token, nil
}

// Permission reports ErrPermission when the destination directory cannot be
// created or written to.
func (s *HTTPService) Permission() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	f, err := os.CreateTemp(s.dir, ".writable-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

// Close cancels running transfers and waits for them to report.
func (s *HTTPService) Close() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *HTTPService) run(token Token, rawURL, filename, dest string) {
	defer s.wg.Done()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.fetch(ctx, token, rawURL, filename, dest)

	s.mu.Lock()
	delete(s.inflight, filename)
	s.mu.Unlock()

	ev := Event{Token: token, Filename: filename, Kind: EventComplete, Path: dest, Success: err == nil, Err: err}
	if err != nil {
		log.Printf("download %s failed: %v", filename, err)
	}
	s.listeners.Emit(ev)
}

func (s *HTTPService) fetch(ctx context.Context, token Token, rawURL, filename, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %s", rawURL, resp.Status)
	}

	staging := dest + stagingSuffix
	f, err := os.Create(staging)
	if err != nil {
		return fmt.Errorf("create %s: %w", staging, err)
	}

	pw := &progressWriter{
		total:    resp.ContentLength,
		interval: s.interval,
		report: func(percent int) {
			s.listeners.Emit(Event{Token: token, Filename: filename, Kind: EventProgress, Percent: percent})
		},
	}
	pw.report(0)

	_, copyErr := io.Copy(io.MultiWriter(f, pw), resp.Body)
	closeErr := f.Close()
	if copyErr == nil && resp.ContentLength > 0 && pw.written != resp.ContentLength {
		copyErr = fmt.Errorf("short body: got %d of %d bytes", pw.written, resp.ContentLength)
	}
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(staging)
		if copyErr != nil {
			return fmt.Errorf("write %s: %w", filename, copyErr)
		}
		return fmt.Errorf("close %s: %w", staging, closeErr)
	}
	if err := os.Rename(staging, dest); err != nil {
		_ = os.Remove(staging)
		return fmt.Errorf("finalize %s: %w", dest, err)
	}
	return nil
}

// progressWriter turns byte counts into throttled percentages below 100.
// Without a known length it reports nothing past the initial zero.
type progressWriter struct {
	total    int64
	written  int64
	last     int
	lastAt   time.Time
	interval time.Duration
	report   func(int)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total <= 0 {
		return len(b), nil
	}
	percent := int(p.written * 100 / p.total)
	if percent > 99 {
		percent = 99
	}
	if percent > p.last && time.Since(p.lastAt) >= p.interval {
		p.last = percent
		p.lastAt = time.Now()
		p.report(percent)
	}
	return len(b), nil
}
