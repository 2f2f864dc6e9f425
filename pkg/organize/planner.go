// Package organize plans and executes file-organization batches: it
// routes scanned files to destinations, resolves collisions, applies
// the resulting operations and records them for undo.
package organize

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tidyfs/tidyfs/pkg/compare"
	"github.com/tidyfs/tidyfs/pkg/logging"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/rules"
	"github.com/tidyfs/tidyfs/pkg/storage"
)

// Decider resolves a single destination collision when the batch
// strategy is ask. The planner never blocks on input itself; the
// caller owns the interaction and hands back a concrete strategy.
// Returning ask again, or anything unknown, falls back to skip.
type Decider interface {
	Decide(conflict models.Conflict) models.ConflictStrategy
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(models.Conflict) models.ConflictStrategy

// Decide calls f.
func (f DeciderFunc) Decide(conflict models.Conflict) models.ConflictStrategy {
	return f(conflict)
}

// PlanRequest describes one organize invocation.
type PlanRequest struct {
	// Root is the base directory destinations are joined onto
	Root string

	// Kind is move or copy
	Kind models.OpKind

	// Strategy applies to every collision in the batch
	Strategy models.ConflictStrategy

	// Command is the human description recorded in the journal
	Command string
}

// Planner turns routed files into an executable batch. A destination
// may collide with an existing file or with an earlier operation of
// the same batch; both are resolved through the configured strategy so
// no two operations ever target the same path unresolved.
type Planner struct {
	fs      storage.Filesystem
	cmp     compare.Comparator
	decider Decider
	logger  logging.Logger
}

// NewPlanner creates a planner. The comparator backs the dedup
// strategy's content check.
func NewPlanner(fs storage.Filesystem, cmp compare.Comparator, logger logging.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Planner{fs: fs, cmp: cmp, logger: logger}
}

// SetDecider installs the interactive conflict callback. Without one,
// ask resolves to skip.
func (p *Planner) SetDecider(d Decider) {
	p.decider = d
}

// Plan routes every file and resolves destination collisions into an
// ordered batch. Files already at their destination are left out, so
// re-planning an organized tree yields an empty batch.
func (p *Planner) Plan(ctx context.Context, req PlanRequest, files []models.FileDescriptor, router *rules.Router) (*models.Batch, error) {
	if req.Kind != models.OpMove && req.Kind != models.OpCopy {
		return nil, fmt.Errorf("cannot plan %q operations from rules", req.Kind)
	}
	if !models.ValidStrategies[req.Strategy] {
		return nil, fmt.Errorf("unknown conflict strategy %q", req.Strategy)
	}

	batch := &models.Batch{
		ID:       uuid.New().String(),
		Root:     req.Root,
		Command:  req.Command,
		Strategy: req.Strategy,
	}
	claimed := make(map[string]bool)

	for i := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		desc := &files[i]
		rel, rule, err := router.Route(desc)
		if errors.Is(err, rules.ErrNoMatch) {
			p.logger.Debug(ctx, "No rule matched", logging.Fields{"path": desc.Path})
			continue
		}
		if err != nil {
			return nil, err
		}
		dest := filepath.Join(req.Root, rel)

		if filepath.Clean(dest) == filepath.Clean(desc.Path) {
			continue
		}

		op := models.PlannedOperation{
			Source:      desc.Path,
			Destination: dest,
			Kind:        req.Kind,
			Status:      models.StatusPending,
			Size:        desc.Size,
		}
		if rule != nil {
			op.Rule = rule.Name
			op.PostAction = rule.PostAction
		}

		prelude, conflict, err := p.resolve(ctx, &op, req.Strategy, claimed)
		if err != nil {
			return nil, err
		}
		if prelude != nil {
			batch.Operations = append(batch.Operations, *prelude)
		}
		if conflict != nil {
			batch.Conflicts = append(batch.Conflicts, *conflict)
		}
		if op.Status == models.StatusPending {
			claimed[op.Destination] = true
		}
		batch.Operations = append(batch.Operations, op)
	}

	batch.CreatedAt = time.Now()
	p.logger.Info(ctx, "Planned batch", logging.Fields{
		"batch_id":   batch.ID,
		"operations": batch.PendingCount(),
		"conflicts":  len(batch.Conflicts),
	})
	return batch, nil
}

// PlanFile plans a single descriptor, for callers that feed files one
// at a time, a filesystem watcher for instance, instead of handing
// over a whole scan.
func (p *Planner) PlanFile(ctx context.Context, req PlanRequest, file models.FileDescriptor, router *rules.Router) (*models.Batch, error) {
	return p.Plan(ctx, req, []models.FileDescriptor{file}, router)
}

// PlanDeletes builds a delete batch for the given files, used by the
// duplicate and clean flows. Deletes carry no destination, so there is
// nothing to collide.
func (p *Planner) PlanDeletes(command string, files []models.FileDescriptor) *models.Batch {
	batch := &models.Batch{
		ID:        uuid.New().String(),
		Command:   command,
		Strategy:  models.StrategySkip,
		CreatedAt: time.Now(),
	}
	for i := range files {
		batch.Operations = append(batch.Operations, models.PlannedOperation{
			Source: files[i].Path,
			Kind:   models.OpDelete,
			Status: models.StatusPending,
			Size:   files[i].Size,
		})
	}
	return batch
}

// resolve settles one destination collision, if any. It may rewrite
// the operation's destination, mark it skipped, or emit a prelude
// operation that moves the existing file aside first.
func (p *Planner) resolve(ctx context.Context, op *models.PlannedOperation, strategy models.ConflictStrategy, claimed map[string]bool) (*models.PlannedOperation, *models.Conflict, error) {
	onDisk, err := p.fs.Exists(ctx, op.Destination)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to probe destination %s: %w", op.Destination, err)
	}
	if !onDisk && !claimed[op.Destination] {
		return nil, nil, nil
	}

	if strategy == models.StrategyAsk {
		strategy = p.askDecision(op)
	}

	conflict := &models.Conflict{
		Source:      op.Source,
		Destination: op.Destination,
		Strategy:    strategy,
	}

	var prelude *models.PlannedOperation
	switch strategy {
	case models.StrategySkip:
		p.drop(op, conflict, "destination already exists")

	case models.StrategyOverwrite:
		conflict.Outcome = models.OutcomeReplace
		op.Resolution = string(conflict.Outcome)

	case models.StrategyRename:
		if err := p.rename(ctx, op, conflict, claimed); err != nil {
			return nil, nil, err
		}

	case models.StrategyDeduplicate:
		if onDisk {
			same, err := p.cmp.Identical(ctx, op.Source, op.Destination)
			if err != nil {
				p.drop(op, conflict, fmt.Sprintf("failed to compare with destination: %v", err))
				break
			}
			if same {
				p.drop(op, conflict, "identical content already at destination")
				break
			}
		}
		if err := p.rename(ctx, op, conflict, claimed); err != nil {
			return nil, nil, err
		}

	case models.StrategyBackup:
		if !onDisk {
			// Only an earlier batch operation claims this path, so
			// there is nothing to move aside yet
			if err := p.rename(ctx, op, conflict, claimed); err != nil {
				return nil, nil, err
			}
			break
		}
		backupPath, err := p.backupDestination(ctx, op.Destination, claimed)
		if err != nil {
			return nil, nil, err
		}
		prelude = &models.PlannedOperation{
			Source:      op.Destination,
			Destination: backupPath,
			Kind:        models.OpMove,
			Status:      models.StatusPending,
			Resolution:  string(models.OutcomeBackedUp),
		}
		if info, err := p.fs.Stat(ctx, op.Destination); err == nil {
			prelude.Size = info.Size
		}
		claimed[backupPath] = true
		conflict.Outcome = models.OutcomeBackedUp
		conflict.BackupPath = backupPath
		op.Resolution = string(models.OutcomeReplace)

	default:
		return nil, nil, fmt.Errorf("unknown conflict strategy %q", strategy)
	}

	return prelude, conflict, nil
}

// askDecision consults the caller for a concrete strategy.
func (p *Planner) askDecision(op *models.PlannedOperation) models.ConflictStrategy {
	if p.decider == nil {
		return models.StrategySkip
	}
	resolved := p.decider.Decide(models.Conflict{
		Source:      op.Source,
		Destination: op.Destination,
		Strategy:    models.StrategyAsk,
	})
	if resolved == models.StrategyAsk || !models.ValidStrategies[resolved] {
		return models.StrategySkip
	}
	return resolved
}

// drop marks the operation skipped with a reason.
func (p *Planner) drop(op *models.PlannedOperation, conflict *models.Conflict, reason string) {
	conflict.Outcome = models.OutcomeDrop
	op.Status = models.StatusSkipped
	op.Resolution = string(conflict.Outcome)
	op.Reason = reason
}

// rename rewrites the operation onto the lowest free numbered variant.
func (p *Planner) rename(ctx context.Context, op *models.PlannedOperation, conflict *models.Conflict, claimed map[string]bool) error {
	renamed, err := p.availableDestination(ctx, op.Destination, claimed)
	if err != nil {
		return err
	}
	conflict.Outcome = models.OutcomeRenamed
	conflict.RenamedTo = renamed
	op.Destination = renamed
	op.Resolution = string(conflict.Outcome)
	return nil
}

// availableDestination probes name_1, name_2, ... until a path is free
// on disk and unclaimed by this batch.
func (p *Planner) availableDestination(ctx context.Context, dest string, claimed map[string]bool) (string, error) {
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if claimed[candidate] {
			continue
		}
		exists, err := p.fs.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe destination %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

// backupDestination picks a free .bak path next to the file being
// displaced.
func (p *Planner) backupDestination(ctx context.Context, dest string, claimed map[string]bool) (string, error) {
	candidate := dest + ".bak"
	for i := 1; ; i++ {
		if !claimed[candidate] {
			exists, err := p.fs.Exists(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("failed to probe backup path %s: %w", candidate, err)
			}
			if !exists {
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s.bak.%d", dest, i)
	}
}
