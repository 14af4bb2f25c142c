package feed

import (
	"strings"

	"github.com/droidheat/amoled/internal/wallpaper"
)

// Sort selects a listing.
type Sort int

const (
	SortHot Sort = iota
	SortNew
	SortTopDay
	SortTopWeek
	SortTopMonth
	SortTopYear
	SortTopAll
)

// Sorts lists every sort in menu order.
var Sorts = []Sort{SortHot, SortNew, SortTopDay, SortTopWeek, SortTopMonth, SortTopYear, SortTopAll}

var sortNames = map[Sort]string{
	SortHot:      "hot",
	SortNew:      "new",
	SortTopDay:   "top-day",
	SortTopWeek:  "top-week",
	SortTopMonth: "top-month",
	SortTopYear:  "top-year",
	SortTopAll:   "top-all",
}

var sortLabels = map[Sort]string{
	SortHot:      "Hot",
	SortNew:      "New",
	SortTopDay:   "Top 24h",
	SortTopWeek:  "Top Week",
	SortTopMonth: "Top Month",
	SortTopYear:  "Top Year",
	SortTopAll:   "Top All",
}

// String returns the preference value for s.
func (s Sort) String() string {
	if name, ok := sortNames[s]; ok {
		return name
	}
	return sortNames[SortHot]
}

// Label returns the display name for s.
func (s Sort) Label() string {
	if label, ok := sortLabels[s]; ok {
		return label
	}
	return sortLabels[SortHot]
}

// Next cycles to the following sort.
func (s Sort) Next() Sort {
	for i, candidate := range Sorts {
		if candidate == s {
			return Sorts[(i+1)%len(Sorts)]
		}
	}
	return SortHot
}

// ParseSort maps a preference value to a Sort, defaulting to SortHot.
func ParseSort(value string) Sort {
	value = strings.ToLower(strings.TrimSpace(value))
	for s, name := range sortNames {
		if name == value {
			return s
		}
	}
	return SortHot
}

// path returns the listing path and window for s.
func (s Sort) path() (string, string) {
	switch s {
	case SortNew:
		return "new.json", ""
	case SortTopDay:
		return "top.json", "day"
	case SortTopWeek:
		return "top.json", "week"
	case SortTopMonth:
		return "top.json", "month"
	case SortTopYear:
		return "top.json", "year"
	case SortTopAll:
		return "top.json", "all"
	default:
		return "hot.json", ""
	}
}

// Cursor addresses a page. The zero Cursor is the first page.
type Cursor struct {
	After  string
	Number int
}

// Page is one filtered page of posts.
type Page struct {
	Records []wallpaper.Record
	Number  int
	After   string
}

// HasMore reports whether another page exists.
func (p Page) HasMore() bool {
	return p.After != ""
}

// Next returns the cursor for the following page.
func (p Page) Next() Cursor {
	return Cursor{After: p.After, Number: p.Number + 1}
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Before   string `json:"before"`
		Children []struct {
			Data *post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	Over18        bool           `json:"over_18"`
	LinkFlairText string         `json:"link_flair_text"`
	Author        string         `json:"author"`
	AuthorFlair   string         `json:"author_flair_text"`
	Score         int            `json:"score"`
	NumComments   int            `json:"num_comments"`
	CreatedUTC    float64        `json:"created_utc"`
	Permalink     string         `json:"permalink"`
	GalleryData   map[string]any `json:"gallery_data"`
	Preview       *preview       `json:"preview"`
}

type preview struct {
	Images []struct {
		Source      *imageSize  `json:"source"`
		Resolutions []imageSize `json:"resolutions"`
	} `json:"images"`
}

type imageSize struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
