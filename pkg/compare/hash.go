package compare

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/tidyfs/tidyfs/pkg/storage"
)

// Partial hashing configuration
const (
	// Minimum file size to enable partial hashing (1MB)
	partialHashThreshold = 1 * 1024 * 1024
	// Size of partial hash to compute (256KB)
	partialHashSize = 256 * 1024
)

// HashComparator tests identity by SHA-256 digest. Sizes are checked
// first; large files get a partial-hash pass for quick rejection before
// the full digest.
type HashComparator struct {
	fs                storage.Filesystem
	bufferSize        int
	bufferPool        *sync.Pool
	enablePartialHash bool
	readerWrapper     ReaderWrapper
}

// NewHashComparator creates a new hash-based comparator
func NewHashComparator(fs storage.Filesystem, bufferSize int) *HashComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &HashComparator{
		fs:                fs,
		bufferSize:        bufferSize,
		enablePartialHash: true,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetPartialHashEnabled enables or disables partial hashing optimization
func (c *HashComparator) SetPartialHashEnabled(enabled bool) {
	c.enablePartialHash = enabled
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *HashComparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// Identical reports whether both files hold the same bytes.
func (c *HashComparator) Identical(ctx context.Context, pathA, pathB string) (bool, error) {
	infoA, err := c.fs.Stat(ctx, pathA)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", pathA, err)
	}
	infoB, err := c.fs.Stat(ctx, pathB)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", pathB, err)
	}

	// Different sizes cannot hold identical content
	if infoA.Size != infoB.Size {
		return false, nil
	}

	// Partial hash pass for quick rejection of large files
	if c.enablePartialHash && infoA.Size >= partialHashThreshold {
		partialA, partialB, err := c.hashPair(ctx, pathA, pathB, partialHashSize)
		if err == nil && partialA != partialB {
			return false, nil
		}
		// A failed partial pass falls through to the full digest
	}

	fullA, fullB, err := c.hashPair(ctx, pathA, pathB, -1)
	if err != nil {
		return false, err
	}
	return fullA == fullB, nil
}

// hashPair digests both files in parallel. A negative limit reads each
// file to the end.
func (c *HashComparator) hashPair(ctx context.Context, pathA, pathB string, limit int64) (string, string, error) {
	var hashA, hashB string
	var errA, errB error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		hashA, errA = c.digest(ctx, pathA, limit)
	}()
	go func() {
		defer wg.Done()
		hashB, errB = c.digest(ctx, pathB, limit)
	}()
	wg.Wait()

	if errA != nil {
		return "", "", fmt.Errorf("failed to hash %s: %w", pathA, errA)
	}
	if errB != nil {
		return "", "", fmt.Errorf("failed to hash %s: %w", pathB, errB)
	}
	return hashA, hashB, nil
}

// digest computes the SHA-256 of up to limit bytes using streaming.
func (c *HashComparator) digest(ctx context.Context, path string, limit int64) (string, error) {
	file, err := c.fs.Read(ctx, path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var reader io.Reader = file
	if c.readerWrapper != nil {
		reader = c.readerWrapper(reader)
	}
	if limit >= 0 {
		reader = io.LimitReader(reader, limit)
	}

	hasher := sha256.New()

	bufPtr := c.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer c.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Name returns the comparator name
func (c *HashComparator) Name() string {
	return "hash"
}
