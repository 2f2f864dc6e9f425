// Package metadata extracts embedded file metadata such as EXIF fields
// and audio tags into flat string bags used by destination templates.
package metadata

// Provider extracts embedded metadata from a file. Extraction is
// best-effort: a file without usable metadata yields an empty bag,
// never an error.
type Provider interface {
	// Extract returns the metadata bag for the file at path.
	Extract(path string) map[string]string

	// Name identifies the provider in logs.
	Name() string
}

// None is the provider for categories without embedded metadata.
type None struct{}

// Extract always returns an empty bag.
func (None) Extract(path string) map[string]string { return nil }

// Name returns the provider identifier.
func (None) Name() string { return "none" }
