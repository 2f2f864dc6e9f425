package models

import (
	"time"
)

// BatchStatus represents the overall result of a batch run
type BatchStatus string

const (
	// BatchSuccess indicates all operations completed successfully
	BatchSuccess BatchStatus = "success"
	// BatchPartial indicates some operations failed or were skipped
	BatchPartial BatchStatus = "partial"
	// BatchFailed indicates every attempted operation failed
	BatchFailed BatchStatus = "failed"
	// BatchCancelled indicates the run was interrupted
	BatchCancelled BatchStatus = "cancelled"
)

// ExitCode returns the process exit code for the batch status.
func (s BatchStatus) ExitCode() int {
	switch s {
	case BatchSuccess:
		return 0
	case BatchPartial:
		return 1
	case BatchFailed:
		return 2
	case BatchCancelled:
		return 3
	default:
		return 2
	}
}

// FileFailure records why a single file could not be processed
type FileFailure struct {
	// Path of the file
	Path string

	// Kind of operation that failed, empty during scanning
	Kind OpKind

	// Reason is the error text
	Reason string

	// Timestamp of the failure
	Timestamp time.Time
}

// ExecutionReport summarizes one executed batch
type ExecutionReport struct {
	// BatchID of the executed batch
	BatchID string

	// Command is the human description of the invocation
	Command string

	// DryRun is true when no mutation was performed
	DryRun bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Counts
	Succeeded int
	Skipped   int
	Failed    int

	// BytesMoved totals the sizes of succeeded operations
	BytesMoved int64

	// Failures lists per-file reasons
	Failures []FileFailure

	// Status is the overall outcome
	Status BatchStatus
}

// Finalize stamps the end time and derives duration and status.
func (r *ExecutionReport) Finalize(cancelled bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	switch {
	case cancelled:
		r.Status = BatchCancelled
	case r.Failed == 0 && r.Skipped == 0:
		r.Status = BatchSuccess
	case r.Succeeded == 0 && r.Failed > 0:
		r.Status = BatchFailed
	default:
		r.Status = BatchPartial
	}
}

// UndoConflict records one journal entry operation that could not be
// reversed, for manual resolution.
type UndoConflict struct {
	// Source and Destination of the original operation
	Source      string
	Destination string

	// Reason the inverse could not be applied
	Reason string
}

// UndoReport summarizes one undo attempt
type UndoReport struct {
	// BatchID of the journal entry acted on
	BatchID string

	// Command that originally produced the batch
	Command string

	// Reversed counts operations whose inverse succeeded
	Reversed int

	// SkippedDeletes counts delete records, which have no inverse
	SkippedDeletes int

	// Conflicts lists operations that could not be reversed
	Conflicts []UndoConflict

	// Undone is true when every reversible operation was reversed and
	// the entry was marked undone in the journal
	Undone bool
}

// ScanReport collects non-fatal problems encountered during a scan
type ScanReport struct {
	// FilesScanned counts descriptors yielded
	FilesScanned int

	// DirsScanned counts directories visited
	DirsScanned int

	// Skipped lists entries that could not be read, with reasons
	Skipped []FileFailure
}

// Merge folds another scan report into this one.
func (r *ScanReport) Merge(other *ScanReport) {
	if other == nil {
		return
	}
	r.FilesScanned += other.FilesScanned
	r.DirsScanned += other.DirsScanned
	r.Skipped = append(r.Skipped, other.Skipped...)
}
