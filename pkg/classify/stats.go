package classify

import (
	"sort"
	"time"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// DefaultTopFiles is how many largest and oldest files a stats
// aggregation keeps when the caller passes zero.
const DefaultTopFiles = 10

// CollectStats aggregates annotated descriptors into per-category
// counts plus the largest and oldest files. Files must already carry
// their category.
func CollectStats(roots []string, files []models.FileDescriptor, topN int) *models.TreeStats {
	if topN <= 0 {
		topN = DefaultTopFiles
	}

	stats := &models.TreeStats{
		Roots:       roots,
		GeneratedAt: time.Now(),
	}

	byCategory := make(map[models.Category]*models.CategoryStat)
	for i := range files {
		f := &files[i]
		stats.TotalFiles++
		stats.TotalBytes += f.Size

		cs, ok := byCategory[f.Category]
		if !ok {
			cs = &models.CategoryStat{Category: f.Category}
			byCategory[f.Category] = cs
		}
		cs.Files++
		cs.Bytes += f.Size
	}

	for _, category := range models.Categories() {
		if cs, ok := byCategory[category]; ok {
			stats.Categories = append(stats.Categories, *cs)
		}
	}

	stats.Largest = topBy(files, topN, func(a, b *models.FileDescriptor) bool {
		return a.Size > b.Size
	})
	stats.Oldest = topBy(files, topN, func(a, b *models.FileDescriptor) bool {
		return a.ModTime.Before(b.ModTime)
	})
	return stats
}

// topBy returns up to n descriptors ordered by the given less
// function. The input slice is left untouched.
func topBy(files []models.FileDescriptor, n int, less func(a, b *models.FileDescriptor) bool) []models.FileDescriptor {
	if len(files) == 0 {
		return nil
	}
	sorted := make([]models.FileDescriptor, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(&sorted[i], &sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
