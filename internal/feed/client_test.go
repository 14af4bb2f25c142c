package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const listingJSON = `{
  "data": {
    "after": "t3_next",
    "before": null,
    "children": [
      {"data": {
        "id": "abc123", "title": "Night Sky [2160x3840] (OC) ✨", "url": "https://i.redd.it/abc.jpg",
        "over_18": false, "link_flair_text": "Abstract", "author": "someone", "score": 42,
        "num_comments": 3, "created_utc": 1700000000, "permalink": "/r/Amoledbackgrounds/comments/abc123/x/",
        "preview": {"images": [{"source": {"url": "https://preview/src.jpg?a=1&amp;b=2", "width": 2160, "height": 3840},
          "resolutions": [
            {"url": "https://preview/108.jpg", "width": 108, "height": 192},
            {"url": "https://preview/216.jpg", "width": 216, "height": 384},
            {"url": "https://preview/320.jpg", "width": 320, "height": 568},
            {"url": "https://preview/640.jpg?x=1&amp;y=2", "width": 640, "height": 1137},
            {"url": "https://preview/960.jpg", "width": 960, "height": 1706},
            {"url": "https://preview/1080.jpg", "width": 1080, "height": 1920}
          ]}]}
      }},
      {"data": {"id": "nsfw", "title": "x", "url": "https://i.redd.it/n.jpg", "over_18": true}},
      {"data": {"id": "gif", "title": "x", "url": "https://i.redd.it/n.gif"}},
      {"data": {"id": "req", "title": "Request: dark city", "url": "https://i.redd.it/r.png"}},
      {"data": {"id": "meta", "title": "Rules", "url": "https://i.redd.it/m.png", "link_flair_text": "META"}},
      {"data": {"id": "gallery", "title": "Set", "url": "https://i.redd.it/g.png", "gallery_data": {"items": []}}},
      {"data": {"id": "small", "title": "Tiny", "url": "https://i.redd.it/s.png",
        "preview": {"images": [{"source": {"url": "https://p/s.png", "width": 500, "height": 900}, "resolutions": []}]}}},
      {"data": {"id": "nopreview", "title": "Bare", "url": "https://i.redd.it/b.png"}}
    ]
  }
}`

func TestClient_PageFiltersAndMaps(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingJSON))
	}))
	defer server.Close()

	client, err := NewClient(server.URL + "/r/Amoledbackgrounds")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	page, err := client.Page(context.Background(), SortTopWeek, Cursor{After: "t3_prev", Number: 2})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}

	if gotPath != "/r/Amoledbackgrounds/top.json" {
		t.Fatalf("path = %q", gotPath)
	}
	for key, want := range map[string]string{"t": "week", "limit": "20", "after": "t3_prev", "count": "40"} {
		if got := gotQuery.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}

	if len(page.Records) != 1 {
		t.Fatalf("records = %d, want 1: %+v", len(page.Records), page.Records)
	}
	rec := page.Records[0]
	if rec.ID != "abc123" || rec.Title != "Night Sky" {
		t.Fatalf("record = %q %q", rec.ID, rec.Title)
	}
	if rec.Image.Width != 2160 || rec.Image.Height != 3840 || rec.Image.URL != "https://i.redd.it/abc.jpg" {
		t.Fatalf("image = %+v", rec.Image)
	}
	if rec.Image.PreviewURL != "https://preview/320.jpg" {
		t.Fatalf("preview = %q", rec.Image.PreviewURL)
	}
	if rec.Image.PreviewSmallURL != "https://preview/216.jpg" {
		t.Fatalf("small preview = %q", rec.Image.PreviewSmallURL)
	}
	if rec.Permalink != "https://reddit.com/r/Amoledbackgrounds/comments/abc123/x/" {
		t.Fatalf("permalink = %q", rec.Permalink)
	}
	if !strings.HasSuffix(rec.CommentsLink, "/r/Amoledbackgrounds/comments/abc123.json") {
		t.Fatalf("comments link = %q", rec.CommentsLink)
	}
	if rec.CreatedAt.Unix() != 1700000000 {
		t.Fatalf("created = %v", rec.CreatedAt)
	}
	if !page.HasMore() || page.Next() != (Cursor{After: "t3_next", Number: 3}) {
		t.Fatalf("next cursor = %+v", page.Next())
	}
}

func TestClient_HotFirstPage(t *testing.T) {
	var gotQuery url.Values
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.Query()
		_, _ = w.Write([]byte(`{"data":{"after":null,"children":[]}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	page, err := client.Page(context.Background(), SortHot, Cursor{})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if gotPath != "/hot.json" || gotQuery.Has("after") || gotQuery.Has("t") || gotQuery.Get("count") != "20" {
		t.Fatalf("request = %s?%s", gotPath, gotQuery.Encode())
	}
	if page.HasMore() || page.Number != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestClient_Search(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(listingJSON))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	page, err := client.Search(context.Background(), " night sky ", Cursor{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery.Get("q") != "night sky" || gotQuery.Get("restrict_sr") != "1" || gotQuery.Get("count") != "25" {
		t.Fatalf("query = %v", gotQuery)
	}
	if len(page.Records) != 1 || page.Records[0].Image.PreviewURL != "https://preview/640.jpg?x=1&y=2" {
		t.Fatalf("records = %+v", page.Records)
	}

	if _, err := client.Search(context.Background(), "  ", Cursor{}); err == nil {
		t.Fatal("empty search returned nil error")
	}
}

func TestClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Page(context.Background(), SortNew, Cursor{}); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v, want status 429", err)
	}
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL: %v", err)
	}
	if u.String() != DefaultBaseURL+"/" {
		t.Fatalf("default = %q", u.String())
	}
	u, err = parseBaseURL("www.reddit.com/r/Other/?x=1#y")
	if err != nil {
		t.Fatalf("parseBaseURL: %v", err)
	}
	if u.String() != "https://www.reddit.com/r/Other/" {
		t.Fatalf("normalised = %q", u.String())
	}
}

func TestCleanTitle(t *testing.T) {
	tests := map[string]string{
		"Night Sky [2160x3840]":      "Night Sky",
		"(OC) Red Moon":              "Red Moon",
		"Café  Lights ✨":             "Caf  Lights",
		"Plain":                      "Plain",
		"Nested [a] middle (b) tail": "Nested  middle  tail",
	}
	for in, want := range tests {
		if got := CleanTitle(in); got != want {
			t.Errorf("CleanTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortRoundTrip(t *testing.T) {
	for _, s := range Sorts {
		if got := ParseSort(s.String()); got != s {
			t.Errorf("ParseSort(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if ParseSort("bogus") != SortHot {
		t.Fatal("unknown sort should default to hot")
	}
	if SortTopAll.Next() != SortHot {
		t.Fatal("Next should wrap around")
	}
}
