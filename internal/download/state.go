package download

import "github.com/droidheat/amoled/internal/wallpaper"

// Status is the phase of the tracked download.
type Status int

const (
	StatusIdle Status = iota
	StatusDownloading
	StatusComplete
	StatusErrorStarting
	StatusErrorFinishing
)

func (s Status) String() string {
	switch s {
	case StatusDownloading:
		return "downloading"
	case StatusComplete:
		return "complete"
	case StatusErrorStarting:
		return "error starting"
	case StatusErrorFinishing:
		return "error finishing"
	default:
		return "idle"
	}
}

// IsError reports whether s is a terminal failure.
func (s Status) IsError() bool {
	return s == StatusErrorStarting || s == StatusErrorFinishing
}

// State is a snapshot of the coordinator. Identifier names the wallpaper the
// state belongs to; Percent is meaningful while downloading and Path once
// complete.
type State struct {
	Status     Status
	Identifier string
	Percent    int
	Path       string
	Err        error
}

// Request describes the wallpaper to download. Filename is already
// sanitised and carries the identifier. Width and Height are zero when
// unknown.
type Request struct {
	URL        string
	Filename   string
	Extension  string
	Identifier string
	Title      string
	Width      int
	Height     int
}

// RequestFor builds the request for rec, naming the file with marker.
func RequestFor(rec wallpaper.Record, marker string) Request {
	return Request{
		URL:        rec.Image.URL,
		Filename:   rec.Filename(marker),
		Extension:  rec.Extension(),
		Identifier: rec.ID,
		Title:      rec.DisplayTitle(),
		Width:      rec.Image.Width,
		Height:     rec.Image.Height,
	}
}

// Result is the outcome a download handle resolves with.
type Result struct {
	Path string
	Err  error
}
