package models

import "time"

// CategoryStat aggregates one category's share of a scanned tree
type CategoryStat struct {
	// Category the files fell into
	Category Category

	// Files counted
	Files int

	// Bytes totalled
	Bytes int64
}

// TreeStats summarizes a scanned and classified tree for reporting
type TreeStats struct {
	// Roots that were scanned
	Roots []string

	// TotalFiles and TotalBytes across all categories
	TotalFiles int
	TotalBytes int64

	// Categories in display order; empty categories are omitted
	Categories []CategoryStat

	// Largest files by size, descending
	Largest []FileDescriptor

	// Oldest files by modification time, ascending
	Oldest []FileDescriptor

	// GeneratedAt is when the aggregation ran
	GeneratedAt time.Time
}
