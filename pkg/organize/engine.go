package organize

import (
	"context"

	"github.com/tidyfs/tidyfs/pkg/classify"
	"github.com/tidyfs/tidyfs/pkg/dedup"
	"github.com/tidyfs/tidyfs/pkg/journal"
	"github.com/tidyfs/tidyfs/pkg/logging"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/rules"
	"github.com/tidyfs/tidyfs/pkg/scan"
	"github.com/tidyfs/tidyfs/pkg/storage"
	"github.com/tidyfs/tidyfs/pkg/trash"
)

// Engine wires scanning, classification, routing, planning and
// execution behind the operations the CLI calls.
type Engine struct {
	scanner  *scan.Scanner
	planner  *Planner
	executor *Executor
	journal  *journal.Journal
	fs       storage.Filesystem
	logger   logging.Logger
	workers  int
}

// NewEngine creates the orchestrating engine.
func NewEngine(
	scanner *scan.Scanner,
	planner *Planner,
	executor *Executor,
	jnl *journal.Journal,
	fs storage.Filesystem,
	logger logging.Logger,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		scanner:  scanner,
		planner:  planner,
		executor: executor,
		journal:  jnl,
		fs:       fs,
		logger:   logger,
	}
}

// SetWorkers bounds the metadata extraction pool. Zero or negative
// keeps the package default.
func (e *Engine) SetWorkers(n int) {
	e.workers = n
}

// SetProgress forwards a progress callback to the executor.
func (e *Engine) SetProgress(p Progress) {
	e.executor.SetProgress(p)
}

// SetTrash forwards a trash destination to the executor.
func (e *Engine) SetTrash(t trash.Mover) {
	e.executor.SetTrash(t)
}

// Plan scans the roots, classifies the files and routes them into an
// executable batch. Metadata extraction runs only when the routing
// templates actually use it.
func (e *Engine) Plan(ctx context.Context, req PlanRequest, roots []string, router *rules.Router) (*models.Batch, *models.ScanReport, error) {
	files, report, err := e.scanner.ScanAll(ctx, roots)
	if err != nil {
		return nil, nil, err
	}

	classify.Annotate(files)
	if router.NeedsMetadata() {
		if err := classify.Enrich(ctx, files, e.workers); err != nil {
			return nil, nil, err
		}
	}

	batch, err := e.planner.Plan(ctx, req, files, router)
	if err != nil {
		return nil, nil, err
	}
	return batch, report, nil
}

// Execute applies a planned batch.
func (e *Engine) Execute(ctx context.Context, batch *models.Batch) (*models.ExecutionReport, error) {
	return e.executor.Execute(ctx, batch)
}

// FindDuplicates scans the roots and groups byte-identical files.
func (e *Engine) FindDuplicates(ctx context.Context, roots []string, opts dedup.Options, progress dedup.Progress) ([]models.DuplicateGroup, []models.FileFailure, *models.ScanReport, error) {
	files, report, err := e.scanner.ScanAll(ctx, roots)
	if err != nil {
		return nil, nil, nil, err
	}
	classify.Annotate(files)

	finder := dedup.NewFinder(opts)
	if progress != nil {
		finder.SetProgress(progress)
	}
	groups, failures, err := finder.Find(ctx, files)
	if err != nil {
		return nil, nil, nil, err
	}
	return groups, failures, report, nil
}

// FindSimilar scans the roots and groups visually similar images.
func (e *Engine) FindSimilar(ctx context.Context, roots []string, opts dedup.SimilarOptions) ([]models.DuplicateGroup, []models.FileFailure, *models.ScanReport, error) {
	files, report, err := e.scanner.ScanAll(ctx, roots)
	if err != nil {
		return nil, nil, nil, err
	}
	classify.Annotate(files)

	groups, failures, err := dedup.FindSimilar(ctx, files, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	return groups, failures, report, nil
}

// PlanDeletes turns deletion candidates into an executable batch.
func (e *Engine) PlanDeletes(command string, files []models.FileDescriptor) *models.Batch {
	return e.planner.PlanDeletes(command, files)
}

// Stats scans the roots and aggregates per-category usage.
func (e *Engine) Stats(ctx context.Context, roots []string, topN int) (*models.TreeStats, *models.ScanReport, error) {
	files, report, err := e.scanner.ScanAll(ctx, roots)
	if err != nil {
		return nil, nil, err
	}
	classify.Annotate(files)
	return classify.CollectStats(roots, files, topN), report, nil
}

// Undo reverses the most recent reversible batch.
func (e *Engine) Undo(ctx context.Context) (*models.UndoReport, error) {
	return e.journal.Undo(ctx, e.fs)
}

// History lists recorded batches, most recent first.
func (e *Engine) History() ([]models.JournalEntry, error) {
	return e.journal.History()
}
