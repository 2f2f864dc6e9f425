package compare

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tidyfs/tidyfs/pkg/storage"
)

// BinaryComparator tests identity byte-by-byte. The most thorough check
// and the slowest; both files are streamed in lockstep.
type BinaryComparator struct {
	fs            storage.Filesystem
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewBinaryComparator creates a new byte-by-byte comparator
func NewBinaryComparator(fs storage.Filesystem, bufferSize int) *BinaryComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &BinaryComparator{
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
func (c *BinaryComparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// Identical reports whether both files hold the same bytes.
func (c *BinaryComparator) Identical(ctx context.Context, pathA, pathB string) (bool, error) {
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

	fileA, err := c.fs.Read(ctx, pathA)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", pathA, err)
	}
	defer fileA.Close()

	fileB, err := c.fs.Read(ctx, pathB)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", pathB, err)
	}
	defer fileB.Close()

	var readerA io.Reader = fileA
	var readerB io.Reader = fileB
	if c.readerWrapper != nil {
		readerA = c.readerWrapper(readerA)
		readerB = c.readerWrapper(readerB)
	}

	bufAPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufAPtr)
	bufA := *bufAPtr

	bufBPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufBPtr)
	bufB := *bufBPtr

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		nA, errA := io.ReadFull(readerA, bufA)
		nB, errB := io.ReadFull(readerB, bufB)

		endA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		endB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !endA {
			return false, fmt.Errorf("failed to read %s: %w", pathA, errA)
		}
		if errB != nil && !endB {
			return false, fmt.Errorf("failed to read %s: %w", pathB, errB)
		}

		if nA != nB {
			return false, nil
		}
		if nA > 0 && !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}

		if endA && endB {
			return true, nil
		}
		if endA != endB {
			return false, nil
		}
	}
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}
