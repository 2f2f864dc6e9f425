package journal

import (
	"context"
	"fmt"

	"github.com/tidyfs/tidyfs/pkg/logging"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/storage"
)

// Undo reverses the most recent batch that can still be reversed.
// Inverses run in reverse execution order so rename chains unwind:
// move(a,b) becomes move(b,a), a copy's destination is removed and the
// source left alone, deletes are skipped since they have no inverse.
// A conflict on one operation is reported and the rest still run; the
// batch is marked undone only when nothing conflicted.
func (j *Journal) Undo(ctx context.Context, fs storage.Filesystem) (*models.UndoReport, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.prune()
	if err != nil {
		return nil, err
	}

	var target *models.JournalEntry
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Undoable() {
			target = &entries[i]
			break
		}
	}
	if target == nil {
		return nil, ErrNothingToUndo
	}

	report := &models.UndoReport{
		BatchID: target.BatchID,
		Command: target.Command,
	}
	j.logger.Info(ctx, "Undoing batch", logging.Fields{
		"batch_id":   target.BatchID,
		"operations": len(target.Operations),
	})

	for i := len(target.Operations) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		op := target.Operations[i]
		var conflict *models.UndoConflict
		switch op.Kind {
		case models.OpDelete:
			report.SkippedDeletes++
			continue
		case models.OpCopy:
			conflict = j.reverseCopy(ctx, fs, op)
		case models.OpMove:
			conflict = j.reverseMove(ctx, fs, op)
		default:
			conflict = &models.UndoConflict{
				Source:      op.Source,
				Destination: op.Destination,
				Reason:      fmt.Sprintf("unknown operation kind %q", op.Kind),
			}
		}

		if conflict != nil {
			report.Conflicts = append(report.Conflicts, *conflict)
			j.logger.Warn(ctx, "Undo conflict", logging.Fields{
				"batch_id": target.BatchID,
				"source":   op.Source,
				"reason":   conflict.Reason,
			})
			continue
		}
		report.Reversed++
	}

	if len(report.Conflicts) == 0 {
		if err := j.append(record{Type: recordUndone, BatchID: target.BatchID}); err != nil {
			return report, err
		}
		report.Undone = true
	}
	return report, nil
}

// reverseMove puts a moved file back where it came from.
func (j *Journal) reverseMove(ctx context.Context, fs storage.Filesystem, op models.OpRecord) *models.UndoConflict {
	exists, err := fs.Exists(ctx, op.Destination)
	if err != nil {
		return undoConflict(op, fmt.Sprintf("failed to check destination: %v", err))
	}
	if !exists {
		return undoConflict(op, "moved file no longer exists at its destination")
	}

	occupied, err := fs.Exists(ctx, op.Source)
	if err != nil {
		return undoConflict(op, fmt.Sprintf("failed to check original path: %v", err))
	}
	if occupied {
		return undoConflict(op, "original path is occupied by another file")
	}

	if err := fs.Move(ctx, op.Destination, op.Source); err != nil {
		return undoConflict(op, err.Error())
	}
	return nil
}

// reverseCopy removes the created copy, never the original.
func (j *Journal) reverseCopy(ctx context.Context, fs storage.Filesystem, op models.OpRecord) *models.UndoConflict {
	exists, err := fs.Exists(ctx, op.Destination)
	if err != nil {
		return undoConflict(op, fmt.Sprintf("failed to check copy: %v", err))
	}
	if !exists {
		return undoConflict(op, "copy no longer exists")
	}

	if err := fs.Remove(ctx, op.Destination); err != nil {
		return undoConflict(op, err.Error())
	}
	return nil
}

func undoConflict(op models.OpRecord, reason string) *models.UndoConflict {
	return &models.UndoConflict{
		Source:      op.Source,
		Destination: op.Destination,
		Reason:      reason,
	}
}
