package compare

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"

	"github.com/tidyfs/tidyfs/pkg/storage"
)

// MD5Comparator tests identity by MD5 digest. Faster than SHA-256 and
// adequate when an adversarial collision is not a concern.
type MD5Comparator struct {
	fs            storage.Filesystem
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewMD5Comparator creates a new MD5-based comparator
func NewMD5Comparator(fs storage.Filesystem, bufferSize int) *MD5Comparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &MD5Comparator{
		fs:         fs,
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *MD5Comparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// Identical reports whether both files hold the same bytes.
func (c *MD5Comparator) Identical(ctx context.Context, pathA, pathB string) (bool, error) {
	infoA, err := c.fs.Stat(ctx, pathA)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", pathA, err)
	}
	infoB, err := c.fs.Stat(ctx, pathB)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", pathB, err)
	}
	if infoA.Size != infoB.Size {
		return false, nil
	}

	var hashA, hashB string
	var errA, errB error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		hashA, errA = c.digest(ctx, pathA)
	}()
	go func() {
		defer wg.Done()
		hashB, errB = c.digest(ctx, pathB)
	}()
	wg.Wait()

	if errA != nil {
		return false, fmt.Errorf("failed to hash %s: %w", pathA, errA)
	}
	if errB != nil {
		return false, fmt.Errorf("failed to hash %s: %w", pathB, errB)
	}
	return hashA == hashB, nil
}

// digest computes the MD5 of a file using streaming.
func (c *MD5Comparator) digest(ctx context.Context, path string) (string, error) {
	file, err := c.fs.Read(ctx, path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var reader io.Reader = file
	if c.readerWrapper != nil {
		reader = c.readerWrapper(reader)
	}

	hasher := md5.New()

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
func (c *MD5Comparator) Name() string {
	return "md5"
}
