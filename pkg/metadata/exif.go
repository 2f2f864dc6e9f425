package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// exifExtensions lists the formats the EXIF provider reads.
var exifExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
	"heic": true, "heif": true,
}

// EXIF extracts camera and capture-date fields from image files.
type EXIF struct{}

// Name returns the provider identifier.
func (EXIF) Name() string { return "exif" }

// Extract reads the EXIF segment and returns camera, date_taken,
// taken.year and taken.month. Files without a readable segment yield
// an empty bag.
func (EXIF) Extract(path string) map[string]string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !exifExtensions[ext] {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	bag := make(map[string]string)

	if camera := exifField(x, exif.Model); camera != "" {
		bag["camera"] = camera
	} else if camera := exifField(x, exif.Make); camera != "" {
		bag["camera"] = camera
	}

	if taken, err := x.DateTime(); err == nil {
		bag["date_taken"] = taken.Format("2006/01")
		bag["taken.year"] = taken.Format("2006")
		bag["taken.month"] = taken.Format("01")
	}

	if len(bag) == 0 {
		return nil
	}
	return bag
}

// exifField reads a single string tag, sanitized, empty when absent.
func exifField(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return Sanitize(value)
}
