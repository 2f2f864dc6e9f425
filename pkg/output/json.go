package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// JSONFormatter renders artifacts as indented JSON documents for
// scripting. Each call emits one complete document.
type JSONFormatter struct {
	w io.Writer
}

// NewJSONFormatter creates a JSON formatter writing to w.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = io.Discard
	}
	return &JSONFormatter{w: w}
}

// JSONOperationData represents one planned operation
type JSONOperationData struct {
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	Size        int64  `json:"size"`
	Rule        string `json:"rule,omitempty"`
}

// JSONConflictData represents one resolved conflict
type JSONConflictData struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Strategy    string `json:"strategy"`
	Outcome     string `json:"outcome"`
	RenamedTo   string `json:"renamed_to,omitempty"`
	BackupPath  string `json:"backup_path,omitempty"`
}

// JSONPlanData represents a planned batch
type JSONPlanData struct {
	BatchID      string              `json:"batch_id"`
	Root         string              `json:"root"`
	Strategy     string              `json:"strategy"`
	FilesScanned int                 `json:"files_scanned"`
	DirsScanned  int                 `json:"dirs_scanned"`
	Pending      int                 `json:"pending"`
	TotalBytes   int64               `json:"total_bytes"`
	Operations   []JSONOperationData `json:"operations"`
	Conflicts    []JSONConflictData  `json:"conflicts,omitempty"`
	ScanErrors   []JSONErrorData     `json:"scan_errors,omitempty"`
}

// JSONReportData represents an execution report
type JSONReportData struct {
	BatchID    string          `json:"batch_id"`
	Status     string          `json:"status"`
	DryRun     bool            `json:"dry_run,omitempty"`
	Succeeded  int             `json:"succeeded"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	BytesMoved int64           `json:"bytes_moved"`
	Duration   string          `json:"duration"`
	DurationMs int64           `json:"duration_ms"`
	Failures   []JSONErrorData `json:"failures,omitempty"`
}

// JSONGroupData represents one duplicate or similarity group
type JSONGroupData struct {
	Hash        string   `json:"hash"`
	Count       int      `json:"count"`
	Size        int64    `json:"size"`
	WastedSpace int64    `json:"wasted_space"`
	Files       []string `json:"files"`
	Distances   []int    `json:"distances,omitempty"`
}

// JSONFindingsData represents the full duplicate scan result
type JSONFindingsData struct {
	Groups      []JSONGroupData `json:"groups"`
	TotalWasted int64           `json:"total_wasted"`
	Failures    []JSONErrorData `json:"failures,omitempty"`
}

// JSONCategoryData represents one category's aggregate
type JSONCategoryData struct {
	Category string `json:"category"`
	Files    int    `json:"files"`
	Bytes    int64  `json:"bytes"`
}

// JSONStatsData represents aggregated tree statistics
type JSONStatsData struct {
	GeneratedAt string             `json:"generated_at"`
	Roots       []string           `json:"roots"`
	TotalFiles  int                `json:"total_files"`
	TotalBytes  int64              `json:"total_bytes"`
	Categories  []JSONCategoryData `json:"categories"`
	Largest     []JSONFileData     `json:"largest,omitempty"`
	Oldest      []JSONFileData     `json:"oldest,omitempty"`
}

// JSONFileData represents one file in stats output
type JSONFileData struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time"`
}

// JSONHistoryEntryData represents one journal entry
type JSONHistoryEntryData struct {
	BatchID    string `json:"batch_id"`
	Timestamp  string `json:"timestamp"`
	Command    string `json:"command"`
	Operations int    `json:"operations"`
	Undone     bool   `json:"undone"`
	Undoable   bool   `json:"undoable"`
}

// JSONUndoData represents an undo outcome
type JSONUndoData struct {
	BatchID        string          `json:"batch_id"`
	Command        string          `json:"command"`
	Reversed       int             `json:"reversed"`
	SkippedDeletes int             `json:"skipped_deletes"`
	Undone         bool            `json:"undone"`
	Conflicts      []JSONErrorData `json:"conflicts,omitempty"`
}

// JSONErrorData represents a path with an error
type JSONErrorData struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// PlanSummary renders a planned batch.
func (f *JSONFormatter) PlanSummary(batch *models.Batch, scan *models.ScanReport) error {
	data := JSONPlanData{
		BatchID:    batch.ID,
		Root:       batch.Root,
		Strategy:   string(batch.Strategy),
		Pending:    batch.PendingCount(),
		TotalBytes: batch.TotalBytes(),
	}
	if scan != nil {
		data.FilesScanned = scan.FilesScanned
		data.DirsScanned = scan.DirsScanned
		data.ScanErrors = errorData(scan.Skipped)
	}
	for i := range batch.Operations {
		op := &batch.Operations[i]
		data.Operations = append(data.Operations, JSONOperationData{
			Kind:        string(op.Kind),
			Source:      op.Source,
			Destination: op.Destination,
			Status:      string(op.Status),
			Reason:      op.Reason,
			Size:        op.Size,
			Rule:        op.Rule,
		})
	}
	for _, c := range batch.Conflicts {
		data.Conflicts = append(data.Conflicts, JSONConflictData{
			Source:      c.Source,
			Destination: c.Destination,
			Strategy:    string(c.Strategy),
			Outcome:     string(c.Outcome),
			RenamedTo:   c.RenamedTo,
			BackupPath:  c.BackupPath,
		})
	}
	return f.encode(data)
}

// ExecutionSummary renders the result of an executed batch.
func (f *JSONFormatter) ExecutionSummary(report *models.ExecutionReport) error {
	return f.encode(JSONReportData{
		BatchID:    report.BatchID,
		Status:     string(report.Status),
		DryRun:     report.DryRun,
		Succeeded:  report.Succeeded,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		BytesMoved: report.BytesMoved,
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Failures:   errorData(report.Failures),
	})
}

// DuplicateGroups renders duplicate or similarity findings.
func (f *JSONFormatter) DuplicateGroups(groups []models.DuplicateGroup, failures []models.FileFailure) error {
	data := JSONFindingsData{
		Groups:   make([]JSONGroupData, 0, len(groups)),
		Failures: errorData(failures),
	}
	for i := range groups {
		g := &groups[i]
		data.TotalWasted += g.WastedSpace()
		data.Groups = append(data.Groups, JSONGroupData{
			Hash:        g.Hash,
			Count:       len(g.Files),
			Size:        g.Size,
			WastedSpace: g.WastedSpace(),
			Files:       g.Files,
			Distances:   g.Distances,
		})
	}
	return f.encode(data)
}

// Stats renders aggregated tree statistics.
func (f *JSONFormatter) Stats(stats *models.TreeStats) error {
	data := JSONStatsData{
		GeneratedAt: stats.GeneratedAt.Format(time.RFC3339),
		Roots:       stats.Roots,
		TotalFiles:  stats.TotalFiles,
		TotalBytes:  stats.TotalBytes,
	}
	for _, cs := range stats.Categories {
		data.Categories = append(data.Categories, JSONCategoryData{
			Category: string(cs.Category),
			Files:    cs.Files,
			Bytes:    cs.Bytes,
		})
	}
	data.Largest = fileData(stats.Largest)
	data.Oldest = fileData(stats.Oldest)
	return f.encode(data)
}

// History renders journal entries, most recent first.
func (f *JSONFormatter) History(entries []models.JournalEntry) error {
	data := make([]JSONHistoryEntryData, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		data = append(data, JSONHistoryEntryData{
			BatchID:    e.BatchID,
			Timestamp:  e.Timestamp.Format(time.RFC3339),
			Command:    e.Command,
			Operations: len(e.Operations),
			Undone:     e.Undone,
			Undoable:   e.Undoable(),
		})
	}
	return f.encode(data)
}

// UndoSummary renders the outcome of an undo.
func (f *JSONFormatter) UndoSummary(report *models.UndoReport) error {
	data := JSONUndoData{
		BatchID:        report.BatchID,
		Command:        report.Command,
		Reversed:       report.Reversed,
		SkippedDeletes: report.SkippedDeletes,
		Undone:         report.Undone,
	}
	for _, c := range report.Conflicts {
		data.Conflicts = append(data.Conflicts, JSONErrorData{
			Path:  c.Destination,
			Error: c.Reason,
		})
	}
	return f.encode(data)
}

// Error reports a fatal error.
func (f *JSONFormatter) Error(err error) error {
	return f.encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

func errorData(failures []models.FileFailure) []JSONErrorData {
	var out []JSONErrorData
	for _, failure := range failures {
		out = append(out, JSONErrorData{Path: failure.Path, Error: failure.Reason})
	}
	return out
}

func fileData(files []models.FileDescriptor) []JSONFileData {
	var out []JSONFileData
	for i := range files {
		out = append(out, JSONFileData{
			Path:    files[i].Path,
			Size:    files[i].Size,
			ModTime: files[i].ModTime.Format(time.RFC3339),
		})
	}
	return out
}
