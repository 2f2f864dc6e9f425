package organize

import (
	"context"
	"fmt"
	"time"

	"github.com/tidyfs/tidyfs/pkg/journal"
	"github.com/tidyfs/tidyfs/pkg/logging"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/storage"
	"github.com/tidyfs/tidyfs/pkg/trash"
)

// ExecutorOptions configures batch execution.
type ExecutorOptions struct {
	// DryRun reports what would happen without touching anything
	DryRun bool
}

// Progress is called after each attempted operation.
type Progress func(done, total int, op *models.PlannedOperation)

// Executor applies a batch strictly in order. Each mutation is
// journaled right after it succeeds and only then counts as durable; a
// crash between the mutation and its journal line is the accepted loss
// window. One failed operation never aborts the rest.
type Executor struct {
	fs       storage.Filesystem
	journal  *journal.Journal
	trash    trash.Mover
	hooks    HookRunner
	logger   logging.Logger
	progress Progress
	opts     ExecutorOptions
}

// NewExecutor creates an executor. A nil trash mover deletes
// permanently; a nil hook runner disables post actions.
func NewExecutor(fs storage.Filesystem, jnl *journal.Journal, opts ExecutorOptions, logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Executor{
		fs:      fs,
		journal: jnl,
		hooks:   NewShellHook(),
		logger:  logger,
		opts:    opts,
	}
}

// SetTrash routes deletes through the given mover.
func (e *Executor) SetTrash(t trash.Mover) {
	e.trash = t
}

// SetHooks replaces the post-action runner.
func (e *Executor) SetHooks(h HookRunner) {
	e.hooks = h
}

// SetProgress installs a callback fired after every attempted
// operation.
func (e *Executor) SetProgress(p Progress) {
	e.progress = p
}

// Execute runs the batch. Cancellation drops not-yet-started
// operations; everything already journaled stays undoable.
func (e *Executor) Execute(ctx context.Context, batch *models.Batch) (*models.ExecutionReport, error) {
	report := &models.ExecutionReport{
		BatchID:   batch.ID,
		Command:   batch.Command,
		DryRun:    e.opts.DryRun,
		StartTime: time.Now(),
	}

	for i := range batch.Operations {
		if batch.Operations[i].Status == models.StatusSkipped {
			report.Skipped++
		}
	}

	if e.opts.DryRun {
		for i := range batch.Operations {
			op := &batch.Operations[i]
			if op.Status == models.StatusPending {
				report.Succeeded++
				report.BytesMoved += op.Size
			}
		}
		report.Finalize(false)
		return report, nil
	}

	if batch.IsEmpty() {
		report.Finalize(false)
		return report, nil
	}

	if err := e.journal.BeginBatch(batch.ID, batch.Command); err != nil {
		return nil, err
	}
	e.logger.Info(ctx, "Executing batch", logging.Fields{
		"batch_id":   batch.ID,
		"operations": batch.PendingCount(),
	})

	total := batch.PendingCount()
	done := 0
	cancelled := false

	for i := range batch.Operations {
		op := &batch.Operations[i]
		if op.Status != models.StatusPending {
			continue
		}

		select {
		case <-ctx.Done():
			cancelled = true
		default:
		}
		if cancelled {
			break
		}

		start := time.Now()
		err := e.apply(ctx, batch.ID, op)
		op.Duration = time.Since(start)
		done++

		if err != nil {
			op.Status = models.StatusFailed
			op.Reason = err.Error()
			report.Failed++
			report.Failures = append(report.Failures, models.FileFailure{
				Path:      op.Source,
				Kind:      op.Kind,
				Reason:    err.Error(),
				Timestamp: time.Now(),
			})
			e.logger.Error(ctx, "Operation failed", err, logging.Fields{
				"source": op.Source,
				"kind":   string(op.Kind),
			})
		} else {
			op.Status = models.StatusDone
			report.Succeeded++
			report.BytesMoved += op.Size
			e.runPostAction(ctx, op, report)
		}

		if e.progress != nil {
			e.progress(done, total, op)
		}
	}

	report.Finalize(cancelled)
	e.logger.Info(ctx, "Batch finished", logging.Fields{
		"batch_id":  batch.ID,
		"status":    string(report.Status),
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	})
	return report, nil
}

// apply performs one mutation and journals it. The journal line lands
// only after the filesystem change succeeds, with no cancellation
// point in between.
func (e *Executor) apply(ctx context.Context, batchID string, op *models.PlannedOperation) error {
	var err error
	switch op.Kind {
	case models.OpMove:
		err = e.fs.Move(ctx, op.Source, op.Destination)
	case models.OpCopy:
		err = e.fs.Copy(ctx, op.Source, op.Destination)
	case models.OpDelete:
		if e.trash != nil {
			var trashed string
			trashed, err = e.trash.Move(ctx, op.Source)
			if err == nil {
				op.Destination = trashed
			}
		} else {
			err = e.fs.Remove(ctx, op.Source)
		}
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
	if err != nil {
		return err
	}

	record := models.OpRecord{Source: op.Source, Kind: op.Kind}
	if op.Kind != models.OpDelete {
		record.Destination = op.Destination
	}
	if err := e.journal.AppendOp(batchID, record); err != nil {
		return fmt.Errorf("mutation applied but not journaled: %w", err)
	}
	return nil
}

// runPostAction fires the rule hook for a successful move or copy.
// Hook failures are reported, never fatal, and never affect counts.
func (e *Executor) runPostAction(ctx context.Context, op *models.PlannedOperation, report *models.ExecutionReport) {
	if op.PostAction == "" || op.Kind == models.OpDelete || e.hooks == nil {
		return
	}
	if err := e.hooks.Run(ctx, op.PostAction, op.Source, op.Destination); err != nil {
		report.Failures = append(report.Failures, models.FileFailure{
			Path:      op.Source,
			Kind:      op.Kind,
			Reason:    err.Error(),
			Timestamp: time.Now(),
		})
		e.logger.Warn(ctx, "Post action failed", logging.Fields{
			"source": op.Source,
			"error":  err.Error(),
		})
	}
}
