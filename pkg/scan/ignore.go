package scan

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFileName is the per-root ignore file read from the scan root.
const IgnoreFileName = ".tidyignore"

// IgnoreMatcher suppresses paths matching any of its glob patterns.
// A pattern containing a slash matches the slash-relative path; a bare
// pattern matches the basename at any depth. A trailing slash marks a
// directory pattern.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern   string
	matchPath bool
	dirOnly   bool
}

// NewIgnoreMatcher compiles patterns, dropping blanks, comments and
// patterns that fail glob validation.
func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}

		dirOnly := strings.HasSuffix(p, "/")
		p = strings.TrimSuffix(p, "/")
		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			continue
		}

		m.patterns = append(m.patterns, ignorePattern{
			pattern:   p,
			matchPath: strings.Contains(p, "/"),
			dirOnly:   dirOnly,
		})
	}
	return m
}

// Match reports whether the slash-relative path is suppressed.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if len(m.patterns) == 0 {
		return false
	}

	path := filepath.ToSlash(relativePath)
	base := filepath.Base(path)

	for _, p := range m.patterns {
		if p.dirOnly {
			// A directory pattern suppresses the directory itself and
			// everything beneath it.
			if path == p.pattern || strings.HasPrefix(path, p.pattern+"/") ||
				strings.Contains(path, "/"+p.pattern+"/") {
				return true
			}
			continue
		}

		if p.matchPath {
			if ok, _ := doublestar.Match(p.pattern, path); ok {
				return true
			}
			continue
		}

		if ok, _ := doublestar.Match(p.pattern, base); ok {
			return true
		}
	}
	return false
}

// LoadIgnoreFile reads the ignore file at the root, one pattern per line.
// A missing file yields no patterns and no error.
func LoadIgnoreFile(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, s.Err()
}
