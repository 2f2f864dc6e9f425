package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// audioExtensions lists the formats the audio-tag provider reads.
var audioExtensions = map[string]bool{
	"mp3": true, "flac": true, "m4a": true, "aac": true, "ogg": true,
	"wav": true, "wma": true, "opus": true, "aiff": true,
}

// AudioTags extracts artist and album fields from audio files.
type AudioTags struct{}

// Name returns the provider identifier.
func (AudioTags) Name() string { return "audio-tag" }

// Extract reads the embedded tag block and returns artist and album.
// Files without readable tags yield an empty bag.
func (AudioTags) Extract(path string) map[string]string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !audioExtensions[ext] {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}

	bag := make(map[string]string)
	if artist := Sanitize(m.Artist()); artist != "" {
		bag["artist"] = artist
	}
	if album := Sanitize(m.Album()); album != "" {
		bag["album"] = album
	}

	if len(bag) == 0 {
		return nil
	}
	return bag
}
