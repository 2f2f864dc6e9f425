// Package trash moves deleted files aside instead of removing them, so
// a mistaken clean can be recovered by hand.
package trash

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tidyfs/tidyfs/pkg/storage"
)

const metaFileName = "meta.json"

const metaVersion = 1

// Mover diverts a file from permanent deletion.
type Mover interface {
	// Move relocates path into the trash area and returns where it went
	Move(ctx context.Context, path string) (string, error)
}

// trashedFile is one meta.json entry.
type trashedFile struct {
	Name      string    `json:"name"`
	BatchID   string    `json:"batch_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// metaFile is the per-batch manifest of trashed files.
type metaFile struct {
	Version int           `json:"version"`
	Files   []trashedFile `json:"files"`
}

// Local trashes files under dir/<batch-id>/, recording each one in a
// meta.json manifest alongside them.
type Local struct {
	mu      sync.Mutex
	fs      storage.Filesystem
	dir     string
	batchID string
}

// NewLocal creates a trash mover scoped to one batch.
func NewLocal(fs storage.Filesystem, dir, batchID string) *Local {
	return &Local{fs: fs, dir: dir, batchID: batchID}
}

// Move relocates path into the batch's trash directory. Name collisions
// inside the directory get a numbered suffix.
func (l *Local) Move(ctx context.Context, path string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	batchDir := filepath.Join(l.dir, l.batchID)
	if err := l.fs.MkdirAll(ctx, batchDir); err != nil {
		return "", fmt.Errorf("failed to create trash directory: %w", err)
	}

	dest, err := l.uniqueDest(ctx, batchDir, filepath.Base(path))
	if err != nil {
		return "", err
	}

	if err := l.fs.Move(ctx, path, dest); err != nil {
		return "", fmt.Errorf("failed to trash %s: %w", path, err)
	}

	entry := trashedFile{
		Name:      filepath.Base(dest),
		BatchID:   l.batchID,
		From:      path,
		To:        dest,
		Timestamp: time.Now(),
	}
	if err := appendMeta(batchDir, entry); err != nil {
		return dest, err
	}
	return dest, nil
}

// uniqueDest finds a free name inside the batch directory.
func (l *Local) uniqueDest(ctx context.Context, batchDir, name string) (string, error) {
	dest := filepath.Join(batchDir, name)
	exists, err := l.fs.Exists(ctx, dest)
	if err != nil {
		return "", fmt.Errorf("failed to probe trash destination: %w", err)
	}
	if !exists {
		return dest, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(batchDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		exists, err := l.fs.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe trash destination: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

// appendMeta adds one entry to the batch manifest, rewriting it
// atomically.
func appendMeta(batchDir string, entry trashedFile) error {
	metaPath := filepath.Join(batchDir, metaFileName)

	meta := metaFile{Version: metaVersion}
	data, err := os.ReadFile(metaPath)
	if err == nil {
		if err := json.Unmarshal(data, &meta); err != nil {
			// A mangled manifest starts over, trashed files stay put
			meta = metaFile{Version: metaVersion}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read trash manifest: %w", err)
	}

	meta.Files = append(meta.Files, entry)

	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trash manifest: %w", err)
	}

	tmpPath := metaPath + ".tmp"
	if err := os.WriteFile(tmpPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write trash manifest: %w", err)
	}
	if err := os.Rename(tmpPath, metaPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize trash manifest: %w", err)
	}
	return nil
}
