package storage

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
	Mode    fs.FileMode
}

// Filesystem defines the interface for the file operations the
// organizer performs. Move must be atomic on a single volume and fall
// back to copy-then-delete across volumes.
type Filesystem interface {
	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Move relocates a file, creating parent directories as needed
	Move(ctx context.Context, source, dest string) error

	// Copy duplicates a file preserving permissions and modification
	// time, creating parent directories as needed
	Copy(ctx context.Context, source, dest string) error

	// Remove deletes a single file
	Remove(ctx context.Context, path string) error

	// RemoveEmptyDir deletes a directory only if it is empty
	RemoveEmptyDir(ctx context.Context, path string) error
}
