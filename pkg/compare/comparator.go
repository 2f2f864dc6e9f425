// Package compare implements the content-identity checks behind the
// Deduplicate conflict strategy and duplicate verification.
package compare

import (
	"context"
	"io"

	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/storage"
)

// ReaderWrapper wraps comparison reads, e.g. for rate limiting.
type ReaderWrapper func(io.Reader) io.Reader

// Comparator defines the interface for content identity checks
type Comparator interface {
	// Identical reports whether two files hold the same bytes
	Identical(ctx context.Context, pathA, pathB string) (bool, error)

	// Name returns the name of the comparison method
	Name() string
}

// ForCheck returns the comparator implementing a configured identity
// check. Unknown values fall back to SHA-256 hashing.
func ForCheck(check models.IdentityCheck, fs storage.Filesystem, bufferSize int) Comparator {
	switch check {
	case models.CheckMD5:
		return NewMD5Comparator(fs, bufferSize)
	case models.CheckBinary:
		return NewBinaryComparator(fs, bufferSize)
	default:
		return NewHashComparator(fs, bufferSize)
	}
}
