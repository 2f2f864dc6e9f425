package scan

import (
	"regexp"
	"strings"
	"time"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// Filters restrict the files a scan yields. All set filters must match
// (logical AND); zero values leave a filter unset.
type Filters struct {
	// MinSize and MaxSize bound the file size in bytes, 0 = unbounded
	MinSize int64
	MaxSize int64

	// After and Before bound the modification time, zero = unbounded
	After  time.Time
	Before time.Time

	// Prefix and Suffix match against the name without its extension
	Prefix string
	Suffix string

	// Substring matches against the full file name
	Substring string

	// CaseInsensitive applies to Prefix, Suffix and Substring
	CaseInsensitive bool

	// Pattern is matched against the file name
	Pattern *regexp.Regexp

	// MIME filters by MIME type; a "prefix/*" wildcard matches the
	// major type
	MIME string

	// Content requires the file to contain this substring. Only files
	// with a text extension can match; the comparison ignores case.
	Content string
}

// Match applies every metadata-level filter to a descriptor.
func (f *Filters) Match(desc *models.FileDescriptor) bool {
	if f.MinSize > 0 && desc.Size < f.MinSize {
		return false
	}
	if f.MaxSize > 0 && desc.Size > f.MaxSize {
		return false
	}
	if !f.After.IsZero() && desc.ModTime.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && !desc.ModTime.Before(f.Before) {
		return false
	}
	if !f.matchName(desc) {
		return false
	}
	if f.Pattern != nil && !f.Pattern.MatchString(desc.Name) {
		return false
	}
	if !f.matchMIME(desc.MIME) {
		return false
	}
	return true
}

// MatchContent applies the content-substring filter. It reads the file
// and therefore runs after the cheap filters; files it cannot read do
// not match.
func (f *Filters) MatchContent(path string) bool {
	if f.Content == "" {
		return true
	}
	return ContainsText(path, f.Content)
}

func (f *Filters) matchName(desc *models.FileDescriptor) bool {
	if f.Prefix == "" && f.Suffix == "" && f.Substring == "" {
		return true
	}

	stem := desc.Stem()
	name := desc.Name
	prefix, suffix, substring := f.Prefix, f.Suffix, f.Substring
	if f.CaseInsensitive {
		stem = strings.ToLower(stem)
		name = strings.ToLower(name)
		prefix = strings.ToLower(prefix)
		suffix = strings.ToLower(suffix)
		substring = strings.ToLower(substring)
	}

	if prefix != "" && !strings.HasPrefix(stem, prefix) {
		return false
	}
	if suffix != "" && !strings.HasSuffix(stem, suffix) {
		return false
	}
	if substring != "" && !strings.Contains(name, substring) {
		return false
	}
	return true
}

func (f *Filters) matchMIME(mimeType string) bool {
	if f.MIME == "" {
		return true
	}
	if mimeType == "" {
		return false
	}
	if major, ok := strings.CutSuffix(f.MIME, "/*"); ok {
		return strings.HasPrefix(mimeType, major+"/")
	}
	return mimeType == f.MIME
}
