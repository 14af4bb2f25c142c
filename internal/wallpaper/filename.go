package wallpaper

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// IDSeparator sits between the sanitised title and the identifier.
	IDSeparator = "_-_"
	// legacyIDSeparator is the reddit "t3_" fullname prefix used by early builds.
	legacyIDSeparator = "_t3_"

	defaultExtension = "png"
	maxTitleLength   = 120
)

// reservedChars cannot appear in filenames on at least one supported filesystem.
const reservedChars = `\/:*?"<>|`

// SanitizeTitle strips reserved filesystem characters and non-ASCII text and
// turns whitespace runs into single underscores.
func SanitizeTitle(title string) string {
	folded := foldASCII(title)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case strings.ContainsRune(reservedChars, r):
			continue
		case r > unicode.MaxASCII || unicode.IsControl(r) && !unicode.IsSpace(r):
			continue
		case unicode.IsSpace(r) || r == '_':
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte('_')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > maxTitleLength {
		out = strings.TrimRight(out[:maxTitleLength], "_")
	}
	return out
}

// BuildFilename returns "<title>_-_<id><marker>" with the title sanitised. The
// identifier suffix keeps names unique across posts sharing a title.
func BuildFilename(title, id, marker string) string {
	name := SanitizeTitle(title)
	id = SanitizeTitle(id)
	if name == "" {
		name = "wallpaper"
	}
	return name + IDSeparator + id + marker
}

// Extension extracts the extension of the image referenced by rawURL,
// lower-cased and without the dot. Unknown extensions fall back to png.
func Extension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	switch ext {
	case "jpg", "jpeg", "png", "webp", "gif", "bmp":
		return ext
	default:
		return defaultExtension
	}
}

// Legacy describes metadata recovered from a filename written by an older
// build that did not keep a structured catalog.
type Legacy struct {
	ID    string
	Title string
}

// ParseLegacyFilename recovers the identifier and title from a stored file
// name. Two historic layouts exist:
//
//	Title_t3_<id><marker>.jpg
//	Title_-_<id><marker>.jpg
//
// When marker is non-empty, names that do not contain it are rejected.
func ParseLegacyFilename(name, marker string) (Legacy, bool) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if marker != "" {
		i := strings.LastIndex(base, marker)
		if i < 0 {
			return Legacy{}, false
		}
		base = base[:i] + base[i+len(marker):]
	}
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		return Legacy{}, false
	}

	sep := IDSeparator
	if strings.Contains(base, legacyIDSeparator) {
		sep = legacyIDSeparator
	}
	idx := strings.LastIndex(base, sep)
	if idx < 0 {
		return Legacy{ID: base, Title: humanize(base)}, true
	}

	title := humanize(base[:idx])
	id := strings.TrimSpace(base[idx+len(sep):])
	if id == "" {
		id = base
	}
	return Legacy{ID: id, Title: title}, true
}

func humanize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
}

func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
