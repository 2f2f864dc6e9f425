// Package classify assigns files to categories based on their extension
// and selects the metadata capability each category carries.
package classify

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tidyfs/tidyfs/pkg/metadata"
	"github.com/tidyfs/tidyfs/pkg/models"
)

// categoryExtensions is the static classification table. Extensions are
// lowercase without the leading dot; anything not listed is Other.
var categoryExtensions = map[models.Category][]string{
	models.CategoryImages: {
		"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "ico",
		"tiff", "heic", "raw",
	},
	models.CategoryDocuments: {
		"pdf", "doc", "docx", "txt", "rtf", "odt", "xls", "xlsx",
		"ppt", "pptx", "csv", "md", "epub",
	},
	models.CategoryVideos: {
		"mp4", "avi", "mov", "mkv", "wmv", "flv", "webm", "m4v",
		"mpeg", "mpg",
	},
	models.CategoryAudio: {
		"mp3", "wav", "flac", "aac", "ogg", "wma", "m4a", "opus",
	},
	models.CategoryArchives: {
		"zip", "tar", "gz", "rar", "7z", "bz2", "xz", "tgz", "dmg",
		"iso",
	},
	models.CategoryCode: {
		"rs", "py", "js", "ts", "go", "java", "c", "cpp", "h", "hpp",
		"cs", "rb", "php", "swift", "kt", "scala", "html", "css",
		"scss", "vue", "jsx", "tsx", "sh", "bash", "zsh", "fish",
	},
	models.CategoryData: {
		"json", "xml", "yaml", "yml", "toml", "sql", "db", "sqlite",
	},
}

var extensionIndex = buildIndex()

func buildIndex() map[string]models.Category {
	index := make(map[string]models.Category)
	for category, extensions := range categoryExtensions {
		for _, ext := range extensions {
			index[ext] = category
		}
	}
	return index
}

// Categorize maps an extension to its category. Unknown or empty
// extensions map to Other.
func Categorize(ext string) models.Category {
	if category, ok := extensionIndex[strings.ToLower(ext)]; ok {
		return category
	}
	return models.CategoryOther
}

// Annotate fills in the category of every descriptor in place.
func Annotate(files []models.FileDescriptor) {
	for i := range files {
		files[i].Category = Categorize(files[i].Extension)
	}
}

// ProviderFor returns the metadata capability of a category. Images carry
// EXIF, Audio carries embedded tags, everything else has none.
func ProviderFor(category models.Category) metadata.Provider {
	switch category {
	case models.CategoryImages:
		return metadata.EXIF{}
	case models.CategoryAudio:
		return metadata.AudioTags{}
	default:
		return metadata.None{}
	}
}

const defaultExtractWorkers = 4

// Enrich populates descriptor metadata through each file's category
// provider, reading file headers on a bounded worker pool. Extraction
// failures leave the bag empty; missing values surface as "Unknown"
// during template expansion.
func Enrich(ctx context.Context, files []models.FileDescriptor, workers int) error {
	if workers < 1 {
		workers = defaultExtractWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range files {
		provider := ProviderFor(files[i].Category)
		if _, none := provider.(metadata.None); none {
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine writes only its own descriptor
			if bag := provider.Extract(files[i].Path); len(bag) > 0 {
				files[i].Metadata = bag
			}
			return nil
		})
	}
	return g.Wait()
}
