package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/tidyfs/tidyfs/pkg/ratelimit"
)

// Local is the OS filesystem implementation. Paths are absolute; an
// optional rate limiter throttles copy reads.
type Local struct {
	limiter *ratelimit.Limiter
}

// NewLocal creates a local filesystem layer.
func NewLocal() *Local {
	return &Local{}
}

// SetRateLimiter throttles subsequent copies. A nil limiter disables
// throttling.
func (l *Local) SetRateLimiter(limiter *ratelimit.Limiter) {
	l.limiter = limiter
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
		Mode:    info.Mode(),
	}, nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Move relocates a file by rename, falling back to copy-then-delete
// when source and destination are on different volumes.
func (l *Local) Move(ctx context.Context, source, dest string) error {
	if err := l.MkdirAll(ctx, filepath.Dir(dest)); err != nil {
		return err
	}

	err := os.Rename(source, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move file: %w", err)
	}

	if err := l.Copy(ctx, source, dest); err != nil {
		return err
	}
	if err := os.Remove(source); err != nil {
		return fmt.Errorf("failed to remove source after cross-volume copy: %w", err)
	}
	return nil
}

// Copy duplicates a file, preserving permissions and modification time.
func (l *Local) Copy(ctx context.Context, source, dest string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if err := l.MkdirAll(ctx, filepath.Dir(dest)); err != nil {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	reader := ratelimit.NewReader(ctx, in, l.limiter)
	written, err := io.Copy(out, reader)
	if err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize destination: %w", err)
	}
	if written != info.Size() {
		return fmt.Errorf("incomplete copy: expected %d bytes, wrote %d", info.Size(), written)
	}

	if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time: %w", err)
	}
	return nil
}

// Remove deletes a single file
func (l *Local) Remove(ctx context.Context, path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("refusing to remove directory as file: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// RemoveEmptyDir deletes a directory. Non-empty directories are left
// alone and reported as an error.
func (l *Local) RemoveEmptyDir(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove directory: %w", err)
	}
	return nil
}
