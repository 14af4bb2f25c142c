package catalog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/droidheat/amoled/internal/wallpaper"
)

// ImportLegacy adds entries for files in dir whose names follow the old
// identifier-in-filename convention. Files already tracked, by identifier or
// by path, are skipped. It returns the number of entries added.
func (s *Store) ImportLegacy(ctx context.Context, dir, marker string) (int, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read legacy dir: %w", err)
	}

	type candidate struct {
		path    string
		legacy  wallpaper.Legacy
		modTime time.Time
	}
	var found []candidate
	for _, item := range items {
		if item.IsDir() || !strings.Contains(item.Name(), marker) {
			continue
		}
		if strings.HasSuffix(item.Name(), ".download") {
			continue
		}
		legacy, ok := wallpaper.ParseLegacyFilename(item.Name(), marker)
		if !ok {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{
			path:    filepath.Join(dir, item.Name()),
			legacy:  legacy,
			modTime: info.ModTime(),
		})
	}
	// The media index listed these by date added.
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].modTime.Before(found[j].modTime)
	})

	tracked := make(map[string]bool)
	for _, e := range s.List(OldestFirst) {
		tracked[e.Path] = true
	}

	added := 0
	for _, c := range found {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if tracked[c.path] || s.Contains(c.legacy.ID) {
			continue
		}
		w, h, err := wallpaper.ImageDimensions(c.path)
		if err != nil {
			log.Printf("catalog: legacy %s: dimensions unknown: %v", filepath.Base(c.path), err)
		}
		entry := Entry{
			ID:      c.legacy.ID,
			Title:   c.legacy.Title,
			Path:    c.path,
			Width:   w,
			Height:  h,
			AddedAt: c.modTime.UTC(),
		}
		if err := s.Add(ctx, entry); err != nil {
			return added, err
		}
		tracked[c.path] = true
		added++
	}
	return added, nil
}
