package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// HumanFormatter renders artifacts as colored terminal text.
type HumanFormatter struct {
	w io.Writer

	heading *color.Color
	ok      *color.Color
	warn    *color.Color
	bad     *color.Color
	dim     *color.Color
}

// NewHumanFormatter creates a human-readable formatter writing to w.
func NewHumanFormatter(w io.Writer) *HumanFormatter {
	if w == nil {
		w = io.Discard
	}
	return &HumanFormatter{
		w:       w,
		heading: color.New(color.Bold),
		ok:      color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		bad:     color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
}

// PlanSummary renders a planned batch.
func (f *HumanFormatter) PlanSummary(batch *models.Batch, scan *models.ScanReport) error {
	if scan != nil {
		fmt.Fprintf(f.w, "Scanned %d files in %d directories\n", scan.FilesScanned, scan.DirsScanned)
		for _, skip := range scan.Skipped {
			fmt.Fprintf(f.w, "  %s %s: %s\n", f.warn.Sprint("skipped"), skip.Path, skip.Reason)
		}
	}

	pending := batch.PendingCount()
	if pending == 0 {
		fmt.Fprintf(f.w, "%s\n", f.ok.Sprint("Nothing to do, everything is already in place"))
	} else {
		fmt.Fprintf(f.w, "\n%s\n", f.heading.Sprintf("Planned %d operations (%s)", pending, formatBytes(batch.TotalBytes())))
	}

	for i := range batch.Operations {
		op := &batch.Operations[i]
		switch op.Status {
		case models.StatusSkipped:
			fmt.Fprintf(f.w, "  %s %s: %s\n", f.dim.Sprint("skip"), op.Source, op.Reason)
		case models.StatusPending:
			if op.Kind == models.OpDelete {
				fmt.Fprintf(f.w, "  %s %s (%s)\n", f.bad.Sprint("delete"), op.Source, formatBytes(op.Size))
			} else {
				fmt.Fprintf(f.w, "  %s %s %s %s\n", op.Kind, op.Source, f.dim.Sprint("->"), op.Destination)
			}
		}
	}

	if len(batch.Conflicts) > 0 {
		fmt.Fprintf(f.w, "\n%s\n", f.heading.Sprintf("Conflicts (%d)", len(batch.Conflicts)))
		for _, c := range batch.Conflicts {
			fmt.Fprintf(f.w, "  %s %s: %s\n", f.warn.Sprint(string(c.Outcome)), c.Destination, conflictNote(c))
		}
	}
	return nil
}

// conflictNote renders the human suffix for one resolved conflict.
func conflictNote(c models.Conflict) string {
	switch c.Outcome {
	case models.OutcomeRenamed:
		return fmt.Sprintf("%s goes to %s", c.Source, c.RenamedTo)
	case models.OutcomeBackedUp:
		return fmt.Sprintf("existing file moved to %s", c.BackupPath)
	case models.OutcomeDrop:
		return fmt.Sprintf("%s stays where it is", c.Source)
	case models.OutcomeReplace:
		return fmt.Sprintf("replaced by %s", c.Source)
	default:
		return string(c.Strategy)
	}
}

// ExecutionSummary renders the result of an executed batch.
func (f *HumanFormatter) ExecutionSummary(report *models.ExecutionReport) error {
	if report.DryRun {
		fmt.Fprintf(f.w, "\n%s\n", f.dim.Sprint("Dry run, nothing was changed"))
	}

	fmt.Fprintf(f.w, "\n%s\n", f.heading.Sprint("Summary:"))
	fmt.Fprintf(f.w, "  Succeeded:  %d\n", report.Succeeded)
	fmt.Fprintf(f.w, "  Skipped:    %d\n", report.Skipped)
	fmt.Fprintf(f.w, "  Failed:     %d\n", report.Failed)
	fmt.Fprintf(f.w, "  Moved:      %s\n", formatBytes(report.BytesMoved))
	fmt.Fprintf(f.w, "  Duration:   %s\n", formatDuration(report.Duration))

	status := f.ok
	switch report.Status {
	case models.BatchFailed:
		status = f.bad
	case models.BatchPartial, models.BatchCancelled:
		status = f.warn
	}
	fmt.Fprintf(f.w, "\nStatus: %s\n", status.Sprint(string(report.Status)))

	if len(report.Failures) > 0 {
		fmt.Fprintf(f.w, "\n%s\n", f.heading.Sprint("Failures:"))
		for _, failure := range report.Failures {
			fmt.Fprintf(f.w, "  %s %s: %s\n", f.bad.Sprint("✗"), failure.Path, failure.Reason)
		}
	}
	return nil
}

// DuplicateGroups renders duplicate or similarity findings.
func (f *HumanFormatter) DuplicateGroups(groups []models.DuplicateGroup, failures []models.FileFailure) error {
	if len(groups) == 0 {
		fmt.Fprintf(f.w, "%s\n", f.ok.Sprint("No duplicates found"))
	}

	var wasted int64
	for i := range groups {
		g := &groups[i]
		wasted += g.WastedSpace()

		fmt.Fprintf(f.w, "%s\n", f.heading.Sprintf("Group %d (%d files, %s each)", i+1, len(g.Files), formatBytes(g.Size)))
		fmt.Fprintf(f.w, "  %s %s\n", f.dim.Sprint("hash"), g.Hash)
		for j, path := range g.Files {
			marker := f.ok.Sprint("keep")
			if j > 0 {
				marker = f.warn.Sprint("dupe")
			}
			if g.Distances != nil {
				fmt.Fprintf(f.w, "  %s %s %s\n", marker, path, f.dim.Sprintf("(distance %d)", g.Distances[j]))
			} else {
				fmt.Fprintf(f.w, "  %s %s\n", marker, path)
			}
		}
		fmt.Fprintf(f.w, "\n")
	}

	if len(groups) > 0 {
		fmt.Fprintf(f.w, "%d groups, %s reclaimable\n", len(groups), formatBytes(wasted))
	}

	for _, failure := range failures {
		fmt.Fprintf(f.w, "%s %s: %s\n", f.warn.Sprint("unreadable"), failure.Path, failure.Reason)
	}
	return nil
}

// Stats renders aggregated tree statistics.
func (f *HumanFormatter) Stats(stats *models.TreeStats) error {
	fmt.Fprintf(f.w, "%s\n", f.heading.Sprintf("%d files, %s", stats.TotalFiles, formatBytes(stats.TotalBytes)))

	for _, cs := range stats.Categories {
		fmt.Fprintf(f.w, "  %-10s %6d files  %10s\n", cs.Category, cs.Files, formatBytes(cs.Bytes))
	}

	if len(stats.Largest) > 0 {
		fmt.Fprintf(f.w, "\n%s\n", f.heading.Sprint("Largest:"))
		for i := range stats.Largest {
			file := &stats.Largest[i]
			fmt.Fprintf(f.w, "  %10s  %s\n", formatBytes(file.Size), file.Path)
		}
	}
	if len(stats.Oldest) > 0 {
		fmt.Fprintf(f.w, "\n%s\n", f.heading.Sprint("Oldest:"))
		for i := range stats.Oldest {
			file := &stats.Oldest[i]
			fmt.Fprintf(f.w, "  %s  %s\n", file.ModTime.Format("2006-01-02"), file.Path)
		}
	}
	return nil
}

// History renders journal entries, most recent first.
func (f *HumanFormatter) History(entries []models.JournalEntry) error {
	if len(entries) == 0 {
		fmt.Fprintf(f.w, "No batches recorded\n")
		return nil
	}

	for i := range entries {
		e := &entries[i]
		state := ""
		if e.Undone {
			state = f.dim.Sprint(" (undone)")
		} else if !e.Undoable() {
			state = f.dim.Sprint(" (not undoable)")
		}
		fmt.Fprintf(f.w, "%s  %s  %d operations%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			f.heading.Sprint(e.Command),
			len(e.Operations), state)
		fmt.Fprintf(f.w, "  %s\n", f.dim.Sprint(e.BatchID))
	}
	return nil
}

// UndoSummary renders the outcome of an undo.
func (f *HumanFormatter) UndoSummary(report *models.UndoReport) error {
	fmt.Fprintf(f.w, "Undoing %s\n", f.heading.Sprint(report.Command))
	fmt.Fprintf(f.w, "  Reversed:        %d\n", report.Reversed)
	if report.SkippedDeletes > 0 {
		fmt.Fprintf(f.w, "  Deletes skipped: %d %s\n", report.SkippedDeletes, f.dim.Sprint("(deletes cannot be undone)"))
	}

	for _, c := range report.Conflicts {
		fmt.Fprintf(f.w, "  %s %s: %s\n", f.warn.Sprint("conflict"), c.Destination, c.Reason)
	}

	if report.Undone {
		fmt.Fprintf(f.w, "%s\n", f.ok.Sprint("Batch fully reversed"))
	} else {
		fmt.Fprintf(f.w, "%s\n", f.warn.Sprint("Batch only partially reversed, resolve the conflicts and undo again"))
	}
	return nil
}

// Error reports a fatal error.
func (f *HumanFormatter) Error(err error) error {
	fmt.Fprintf(f.w, "%s %v\n", f.bad.Sprint("Error:"), err)
	return nil
}

// Name returns the formatter name.
func (f *HumanFormatter) Name() string {
	return "human"
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats duration in human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
