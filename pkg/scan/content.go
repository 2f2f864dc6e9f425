package scan

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// textExtensions lists extensions whose content can be searched as text.
var textExtensions = map[string]bool{
	"txt":  true,
	"md":   true,
	"log":  true,
	"csv":  true,
	"json": true,
	"xml":  true,
	"yaml": true,
	"yml":  true,
	"toml": true,
	"ini":  true,
	"cfg":  true,
}

// maxContentRead caps how much of a file the content filter reads.
const maxContentRead = 8 << 20

// ContentSearchable reports whether the content filter can inspect the file.
func ContentSearchable(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return textExtensions[ext]
}

// ContainsText reports whether a searchable file contains the pattern,
// ignoring case. Unreadable or non-text files never match.
func ContainsText(path, pattern string) bool {
	if pattern == "" || !ContentSearchable(path) {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxContentRead))
	if err != nil {
		return false
	}

	return strings.Contains(strings.ToLower(string(data)), strings.ToLower(pattern))
}
