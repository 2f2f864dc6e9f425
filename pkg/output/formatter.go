// Package output renders plans, reports and findings for the terminal
// in either human-readable or JSON form, and exports findings to files.
package output

import (
	"fmt"
	"io"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// Formatter renders the artifacts the commands produce. Human and JSON
// implementations exist; both write a complete document per call.
type Formatter interface {
	// PlanSummary renders a planned batch before (or instead of)
	// execution, including resolved conflicts
	PlanSummary(batch *models.Batch, scan *models.ScanReport) error

	// ExecutionSummary renders the result of an executed batch
	ExecutionSummary(report *models.ExecutionReport) error

	// DuplicateGroups renders duplicate or similarity findings
	DuplicateGroups(groups []models.DuplicateGroup, failures []models.FileFailure) error

	// Stats renders aggregated tree statistics
	Stats(stats *models.TreeStats) error

	// History renders journal entries, most recent first
	History(entries []models.JournalEntry) error

	// UndoSummary renders the outcome of an undo
	UndoSummary(report *models.UndoReport) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// ForFormat returns the formatter registered under the given name.
func ForFormat(format string, w io.Writer) (Formatter, error) {
	switch format {
	case "", "human":
		return NewHumanFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
