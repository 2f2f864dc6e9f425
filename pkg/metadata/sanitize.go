package metadata

import "strings"

// Sanitize makes a metadata value safe for use as a path segment.
// Surrounding whitespace, quotes and NUL padding are stripped; path
// separators and other reserved characters become underscores.
func Sanitize(value string) string {
	v := strings.TrimRight(strings.TrimSpace(value), "\x00")
	v = strings.Trim(v, `"'`)

	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		switch r {
		case '/', '\\', ':', '*', '?', '<', '>', '|', '"':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
