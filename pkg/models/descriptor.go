package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileDescriptor is an immutable snapshot of a candidate file taken at scan
// time. It is never re-validated; a file that changes between scan and
// execution goes stale with it.
type FileDescriptor struct {
	// Path is the absolute path on the filesystem
	Path string

	// RelativePath is the path relative to the scan root
	RelativePath string

	// Name is the base name including extension
	Name string

	// Size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// Category is the derived file category
	Category Category

	// Extension is the lowercased extension without the dot, empty if none
	Extension string

	// MIME is the MIME type guessed from the extension
	MIME string

	// Metadata holds provider-extracted values (camera, artist, ...).
	// Nil when no provider ran or the provider found nothing.
	Metadata map[string]string
}

// Stem returns the file name without its extension.
func (d *FileDescriptor) Stem() string {
	ext := filepath.Ext(d.Name)
	return strings.TrimSuffix(d.Name, ext)
}

// Meta returns a metadata value and whether it was present.
func (d *FileDescriptor) Meta(key string) (string, bool) {
	if d.Metadata == nil {
		return "", false
	}
	v, ok := d.Metadata[key]
	return v, ok && v != ""
}

// Category is the classification bucket for a file
type Category string

const (
	// CategoryImages covers photo and image formats
	CategoryImages Category = "Images"
	// CategoryDocuments covers office and text documents
	CategoryDocuments Category = "Documents"
	// CategoryVideos covers video containers
	CategoryVideos Category = "Videos"
	// CategoryAudio covers audio formats
	CategoryAudio Category = "Audio"
	// CategoryArchives covers compressed archives and disk images
	CategoryArchives Category = "Archives"
	// CategoryCode covers source code files
	CategoryCode Category = "Code"
	// CategoryData covers structured data and databases
	CategoryData Category = "Data"
	// CategoryOther covers everything else
	CategoryOther Category = "Other"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryImages,
		CategoryDocuments,
		CategoryVideos,
		CategoryAudio,
		CategoryArchives,
		CategoryCode,
		CategoryData,
		CategoryOther,
	}
}

// String returns the category name as used in destination paths.
func (c Category) String() string {
	return string(c)
}
