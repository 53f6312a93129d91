package uploads

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces name to a safe ASCII file name: compatibility
// decomposition, non-ASCII dropped, path separators and whitespace turned
// into underscores, anything outside [A-Za-z0-9_.-] removed, and leading or
// trailing dots and underscores trimmed. The result may be empty.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}

	s := strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeChars.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}

// Extension returns the lower-cased extension of name without the dot,
// or "" when name has none.
func Extension(name string) string {
	ext := path.Ext(strings.ReplaceAll(name, `\`, "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// truncateStem shortens name to at most limit bytes by cutting the part
// before ".ext", so the extension always survives. name must be ASCII.
func truncateStem(name, ext string, limit int) string {
	if len(name) <= limit {
		return name
	}
	suffix := name[len(name)-len(ext)-1:]
	stem := strings.TrimRight(name[:limit-len(suffix)], "._")
	if stem == "" {
		stem = "image"
	}
	return stem + suffix
}
