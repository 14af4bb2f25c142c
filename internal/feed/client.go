package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source is a paginated supply of wallpaper records.
type Source interface {
	Page(ctx context.Context, sort Sort, cursor Cursor) (Page, error)
	Search(ctx context.Context, query string, cursor Cursor) (Page, error)
}

var _ Source = (*Client)(nil)

const (
	DefaultBaseURL   = "https://www.reddit.com/r/Amoledbackgrounds"
	PageLimit        = 20
	searchPageSize   = 25
	defaultUserAgent = "amoled/1.0"
	requestTimeout   = 15 * time.Second

	listingPreviewOffset = 4
	searchPreviewOffset  = 3
)

// Client reads the subreddit listing over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewClient builds a client for the subreddit at baseURL (DefaultBaseURL
// when empty).
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// Page fetches one listing page for sort.
func (c *Client) Page(ctx context.Context, sort Sort, cursor Cursor) (Page, error) {
	if c == nil {
		return Page{}, fmt.Errorf("client is nil")
	}
	number := max(cursor.Number, 1)
	name, window := sort.path()

	values := url.Values{}
	if window != "" {
		values.Set("t", window)
	}
	values.Set("limit", strconv.Itoa(PageLimit))
	if cursor.After != "" {
		values.Set("after", cursor.After)
	}
	values.Set("count", strconv.Itoa(PageLimit*number))

	rel := &url.URL{Path: name, RawQuery: values.Encode()}
	return c.fetch(ctx, rel, number, listingPreviewOffset)
}

// Search fetches one page of posts matching query.
func (c *Client) Search(ctx context.Context, query string, cursor Cursor) (Page, error) {
	if c == nil {
		return Page{}, fmt.Errorf("client is nil")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Page{}, fmt.Errorf("search query required")
	}
	number := max(cursor.Number, 1)

	values := url.Values{}
	values.Set("q", query)
	values.Set("restrict_sr", "1")
	values.Set("count", strconv.Itoa(searchPageSize*number))
	if cursor.After != "" {
		values.Set("after", cursor.After)
	}
	rel := &url.URL{Path: "search.json", RawQuery: values.Encode()}
	return c.fetch(ctx, rel, number, searchPreviewOffset)
}

func (c *Client) fetch(ctx context.Context, rel *url.URL, number, previewOffset int) (Page, error) {
	var payload listing
	if err := c.doURL(ctx, rel, &payload); err != nil {
		return Page{}, err
	}

	page := Page{Number: number, After: payload.Data.After}
	for _, child := range payload.Data.Children {
		p := child.Data
		if p == nil || skip(p) {
			continue
		}
		rec, ok := toRecord(p, c.baseURL.String(), previewOffset)
		if !ok {
			continue
		}
		page.Records = append(page.Records, rec)
	}
	if dropped := len(payload.Data.Children) - len(page.Records); dropped > 0 {
		log.Printf("feed: %s page %d kept %d of %d posts", rel.Path, number, len(page.Records), len(payload.Data.Children))
	}
	return page, nil
}

func (c *Client) doURL(ctx context.Context, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("feed %s returned status %d", rel.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseBaseURL normalises the subreddit URL so relative listing paths
// resolve beneath it.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse feed url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse feed url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
