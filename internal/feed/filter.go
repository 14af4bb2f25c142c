package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/droidheat/amoled/internal/wallpaper"
)

const (
	MinWidth  = 600
	MinHeight = 1400
)

var (
	blockedTitleWords = []string{"request", "question", "fuck"}
	blockedFlairWords = []string{"meta", "psa"}
	bracketed         = regexp.MustCompile(`[\[(].*?[\])]`)
)

// skip reports whether p is unusable as a wallpaper.
func skip(p *post) bool {
	u := strings.ToLower(p.URL)
	if !strings.HasSuffix(u, ".jpg") && !strings.HasSuffix(u, ".png") && !strings.HasSuffix(u, ".jpeg") {
		return true
	}
	if p.Over18 || p.GalleryData != nil {
		return true
	}
	title := strings.ToLower(p.Title)
	for _, w := range blockedTitleWords {
		if strings.Contains(title, w) {
			return true
		}
	}
	flair := strings.ToLower(p.LinkFlairText)
	for _, w := range blockedFlairWords {
		if strings.Contains(flair, w) {
			return true
		}
	}
	return false
}

// toRecord converts a listing post; ok is false when it has no usable image.
// previewOffset picks the preview resolution counted from the largest.
func toRecord(p *post, baseURL string, previewOffset int) (wallpaper.Record, bool) {
	if p.Preview == nil || len(p.Preview.Images) == 0 {
		return wallpaper.Record{}, false
	}
	img := p.Preview.Images[0]
	if img.Source == nil || img.Resolutions == nil {
		return wallpaper.Record{}, false
	}
	if img.Source.Width < MinWidth || img.Source.Height < MinHeight {
		return wallpaper.Record{}, false
	}

	image := wallpaper.Image{
		URL:    htmlDecode(p.URL),
		Width:  img.Source.Width,
		Height: img.Source.Height,
	}
	if n := len(img.Resolutions); n > 0 {
		image.PreviewURL = htmlDecode(img.Resolutions[max(n-previewOffset, 0)].URL)
		image.PreviewSmallURL = htmlDecode(img.Resolutions[max(n-previewOffset-1, 0)].URL)
	}

	return wallpaper.Record{
		ID:           p.ID,
		Title:        CleanTitle(p.Title),
		Image:        image,
		Flair:        p.LinkFlairText,
		Author:       p.Author,
		AuthorFlair:  p.AuthorFlair,
		Score:        p.Score,
		Comments:     p.NumComments,
		CreatedAt:    time.Unix(int64(p.CreatedUTC), 0).UTC(),
		Permalink:    "https://reddit.com" + p.Permalink,
		CommentsLink: strings.TrimRight(baseURL, "/") + "/comments/" + p.ID + ".json",
	}, true
}

// CleanTitle drops bracketed fragments and non-ASCII characters.
func CleanTitle(title string) string {
	title = bracketed.ReplaceAllString(title, "")
	title = strings.Map(func(r rune) rune {
		if r > 0x7f {
			return -1
		}
		return r
	}, title)
	return strings.TrimSpace(title)
}

func htmlDecode(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}
