// Package wallpaper holds the wallpaper records produced by the feed and the
// helpers that turn them into on-disk filenames.
package wallpaper

import (
	"strconv"
	"strings"
	"time"
)

// Image describes the source image of a post.
type Image struct {
	URL             string `json:"url"`
	PreviewURL      string `json:"preview_url,omitempty"`
	PreviewSmallURL string `json:"preview_small_url,omitempty"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
}

// Record is a wallpaper post as returned by the feed. It is never mutated
// after retrieval.
type Record struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Image        Image     `json:"image"`
	Flair        string    `json:"flair,omitempty"`
	Author       string    `json:"author,omitempty"`
	AuthorFlair  string    `json:"author_flair,omitempty"`
	Score        int       `json:"score"`
	Comments     int       `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	Permalink    string    `json:"permalink,omitempty"`
	CommentsLink string    `json:"comments_link,omitempty"`
}

// Resolution formats the pixel size as "W x H", or "" when unknown.
func (r Record) Resolution() string {
	return FormatResolution(r.Image.Width, r.Image.Height)
}

// Filename returns the sanitised stored filename (without extension).
func (r Record) Filename(marker string) string {
	return BuildFilename(r.Title, r.ID, marker)
}

// Extension returns the file extension of the source image.
func (r Record) Extension() string {
	return Extension(r.Image.URL)
}

// DisplayTitle returns the title, falling back to the identifier.
func (r Record) DisplayTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return r.ID
}

// FormatResolution renders a width/height pair; zero values are unknown.
func FormatResolution(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	return strconv.Itoa(width) + " x " + strconv.Itoa(height)
}
