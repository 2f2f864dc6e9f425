// Package dedup finds exact duplicates by content hash and visually
// similar images by perceptual fingerprint.
package dedup

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/ratelimit"
)

const defaultHashWorkers = 4

// Options tunes the duplicate scan.
type Options struct {
	// Workers bounds parallel hashing goroutines
	Workers int

	// RateLimit caps total read bandwidth in bytes per second, 0 = off
	RateLimit int64
}

// Progress is called after each candidate file is hashed.
type Progress func(done, total int)

// Finder groups files with identical content.
type Finder struct {
	opts     Options
	limiter  *ratelimit.Limiter
	progress Progress
	bufPool  *sync.Pool
}

// NewFinder creates a duplicate finder.
func NewFinder(opts Options) *Finder {
	if opts.Workers < 1 {
		opts.Workers = defaultHashWorkers
	}
	return &Finder{
		opts:    opts,
		limiter: ratelimit.NewLimiter(opts.RateLimit),
		bufPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, 256*1024)
				return &buf
			},
		},
	}
}

// SetProgress installs a callback fired after each hashed candidate.
func (f *Finder) SetProgress(p Progress) {
	f.progress = p
}

// Find partitions files by size, hashes candidate buckets in parallel
// and returns groups of byte-identical files in scan order. Hash
// failures exclude the file and are reported, never fatal.
func (f *Finder) Find(ctx context.Context, files []models.FileDescriptor) ([]models.DuplicateGroup, []models.FileFailure, error) {
	// Files with a unique size cannot have a duplicate
	sizeCount := make(map[int64]int, len(files))
	for i := range files {
		sizeCount[files[i].Size]++
	}

	var candidates []int
	for i := range files {
		if sizeCount[files[i].Size] >= 2 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	hashes := make([]string, len(files))
	var failures []models.FileFailure
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)

	for _, idx := range candidates {
		idx := idx
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			sum, err := f.hashFile(gctx, files[idx].Path)

			mu.Lock()
			defer mu.Unlock()
			done++
			if f.progress != nil {
				f.progress(done, len(candidates))
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failures = append(failures, models.FileFailure{
					Path:      files[idx].Path,
					Reason:    err.Error(),
					Timestamp: time.Now(),
				})
				return nil
			}
			hashes[idx] = sum
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to hash files: %w", err)
	}

	return groupByHash(files, hashes), failures, nil
}

// groupByHash collects files sharing size and digest, preserving scan
// order so the first member is canonical.
func groupByHash(files []models.FileDescriptor, hashes []string) []models.DuplicateGroup {
	type key struct {
		size int64
		hash string
	}

	var order []key
	members := make(map[key][]string)

	for i := range files {
		if hashes[i] == "" {
			continue
		}
		k := key{size: files[i].Size, hash: hashes[i]}
		if _, seen := members[k]; !seen {
			order = append(order, k)
		}
		members[k] = append(members[k], files[i].Path)
	}

	var groups []models.DuplicateGroup
	for _, k := range order {
		if len(members[k]) < 2 {
			continue
		}
		groups = append(groups, models.DuplicateGroup{
			Hash:  k.hash,
			Size:  k.size,
			Files: members[k],
		})
	}
	return groups
}

// hashFile computes the streaming SHA-256 of one file.
func (f *Finder) hashFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := ratelimit.NewReader(ctx, file, f.limiter)
	hasher := sha256.New()

	bufPtr := f.bufPool.Get().(*[]byte)
	buffer := *bufPtr
	defer f.bufPool.Put(bufPtr)

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
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
