package organize

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tidyfs/tidyfs/pkg/logging"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/scan"
	"github.com/tidyfs/tidyfs/pkg/storage"
)

// Cleaner finds stale files and empty directories. Stale files feed
// the normal delete-batch path so removals stay journaled; empty
// directories are removed directly since nothing is lost with them.
type Cleaner struct {
	scanner *scan.Scanner
	fs      storage.Filesystem
	logger  logging.Logger
}

// NewCleaner creates a cleaner.
func NewCleaner(scanner *scan.Scanner, fs storage.Filesystem, logger logging.Logger) *Cleaner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Cleaner{scanner: scanner, fs: fs, logger: logger}
}

// OlderThan returns files whose modification time lies further back
// than the given age.
func (c *Cleaner) OlderThan(ctx context.Context, roots []string, age time.Duration) ([]models.FileDescriptor, *models.ScanReport, error) {
	files, report, err := c.scanner.ScanAll(ctx, roots)
	if err != nil {
		return nil, nil, err
	}

	cutoff := time.Now().Add(-age)
	var stale []models.FileDescriptor
	for i := range files {
		if files[i].ModTime.Before(cutoff) {
			stale = append(stale, files[i])
		}
	}
	return stale, report, nil
}

// EmptyDirs returns directories containing nothing but other empty
// directories, deepest first. The root itself is never listed.
func (c *Cleaner) EmptyDirs(ctx context.Context, root string) ([]string, error) {
	var all []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			// Unreadable subtrees are not candidates
			return nil
		}
		if d.IsDir() && path != root {
			all = append(all, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir yields parents before children, so the reverse pass sees
	// every child's verdict before judging its parent
	empty := make(map[string]bool)
	var result []string
	for i := len(all) - 1; i >= 0; i-- {
		dir := all[i]
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		isEmpty := true
		for _, entry := range entries {
			if !entry.IsDir() || !empty[filepath.Join(dir, entry.Name())] {
				isEmpty = false
				break
			}
		}
		if isEmpty {
			empty[dir] = true
			result = append(result, dir)
		}
	}
	return result, nil
}

// RemoveEmptyDirs deletes the directories EmptyDirs finds, deepest
// first. Failures are reported per directory and never abort the rest.
func (c *Cleaner) RemoveEmptyDirs(ctx context.Context, root string) ([]string, []models.FileFailure, error) {
	dirs, err := c.EmptyDirs(ctx, root)
	if err != nil {
		return nil, nil, err
	}

	var removed []string
	var failures []models.FileFailure
	for _, dir := range dirs {
		select {
		case <-ctx.Done():
			return removed, failures, ctx.Err()
		default:
		}
		if err := c.fs.RemoveEmptyDir(ctx, dir); err != nil {
			failures = append(failures, models.FileFailure{
				Path:      dir,
				Reason:    err.Error(),
				Timestamp: time.Now(),
			})
			continue
		}
		removed = append(removed, dir)
	}

	if len(removed) > 0 {
		c.logger.Info(ctx, "Removed empty directories", logging.Fields{
			"root":  root,
			"count": len(removed),
		})
	}
	return removed, failures, nil
}
