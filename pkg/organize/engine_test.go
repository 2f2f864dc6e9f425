package organize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidyfs/tidyfs/pkg/compare"
	"github.com/tidyfs/tidyfs/pkg/dedup"
	"github.com/tidyfs/tidyfs/pkg/journal"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/rules"
	"github.com/tidyfs/tidyfs/pkg/scan"
	"github.com/tidyfs/tidyfs/pkg/storage"
)

// testRig assembles a full engine over a temp tree. The journal and
// trash live in dot-directories the scanner never yields.
type testRig struct {
	dir string
	eng *Engine
	jnl *journal.Journal
	fs  storage.Filesystem
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	dir, err := os.MkdirTemp("", "organize-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	fs := storage.NewLocal()
	jnl, err := journal.Open(filepath.Join(dir, ".journal", "journal.jsonl"), journal.Retention{}, nil)
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}
	t.Cleanup(func() { jnl.Close() })

	planner := NewPlanner(fs, compare.NewHashComparator(fs, 0), nil)
	executor := NewExecutor(fs, jnl, ExecutorOptions{}, nil)
	scanner := scan.NewScanner(scan.Options{Recursive: true})
	eng := NewEngine(scanner, planner, executor, jnl, fs, nil)

	return &testRig{dir: dir, eng: eng, jnl: jnl, fs: fs}
}

func (r *testRig) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent of %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

func (r *testRig) planRequest(kind models.OpKind, strategy models.ConflictStrategy) PlanRequest {
	return PlanRequest{
		Root:     r.dir,
		Kind:     kind,
		Strategy: strategy,
		Command:  "organize by-type",
	}
}

func byTypeRouter(t *testing.T) *rules.Router {
	t.Helper()
	tpl, err := rules.ForMode(models.ModeByType)
	if err != nil {
		t.Fatalf("Failed to build by-type template: %v", err)
	}
	return rules.NewRouter(nil, tpl)
}

func requireFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	if string(data) != want {
		t.Errorf("%s content = %q, want %q", path, data, want)
	}
}

func requireMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be absent, stat err = %v", path, err)
	}
}

func TestEngineOrganizeByType(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.write(t, "report.pdf", "pdf bytes")
	rig.write(t, "photo.jpg", "jpg bytes")
	rig.write(t, "clip.mp4", "mp4 bytes")

	batch, _, err := rig.eng.Plan(ctx, rig.planRequest(models.OpMove, models.StrategyRename), []string{rig.dir}, byTypeRouter(t))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if batch.PendingCount() != 3 {
		t.Fatalf("Expected 3 operations, got %d", batch.PendingCount())
	}
	if len(batch.Conflicts) != 0 {
		t.Errorf("Unexpected conflicts: %+v", batch.Conflicts)
	}

	report, err := rig.eng.Execute(ctx, batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Status != models.BatchSuccess {
		t.Fatalf("Status = %s, failures %+v", report.Status, report.Failures)
	}
	if report.Succeeded != 3 {
		t.Errorf("Succeeded = %d, want 3", report.Succeeded)
	}

	requireFileContent(t, filepath.Join(rig.dir, "Documents", "report.pdf"), "pdf bytes")
	requireFileContent(t, filepath.Join(rig.dir, "Images", "photo.jpg"), "jpg bytes")
	requireFileContent(t, filepath.Join(rig.dir, "Videos", "clip.mp4"), "mp4 bytes")
	requireMissing(t, filepath.Join(rig.dir, "report.pdf"))
	requireMissing(t, filepath.Join(rig.dir, "photo.jpg"))
	requireMissing(t, filepath.Join(rig.dir, "clip.mp4"))

	// An organized tree plans to nothing
	again, _, err := rig.eng.Plan(ctx, rig.planRequest(models.OpMove, models.StrategyRename), []string{rig.dir}, byTypeRouter(t))
	if err != nil {
		t.Fatalf("Re-plan failed: %v", err)
	}
	if !again.IsEmpty() {
		t.Errorf("Expected empty batch, got %d pending operations", again.PendingCount())
	}
}

func TestEngineUndoRestoresMoves(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	src := rig.write(t, "notes.txt", "undo me")

	batch, _, err := rig.eng.Plan(ctx, rig.planRequest(models.OpMove, models.StrategyRename), []string{rig.dir}, byTypeRouter(t))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if _, err := rig.eng.Execute(ctx, batch); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	moved := filepath.Join(rig.dir, "Documents", "notes.txt")
	requireFileContent(t, moved, "undo me")

	undo, err := rig.eng.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !undo.Undone || undo.Reversed != 1 {
		t.Fatalf("Expected clean reversal, got %+v", undo)
	}

	requireFileContent(t, src, "undo me")
	requireMissing(t, moved)

	history, err := rig.eng.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || !history[0].Undone {
		t.Errorf("Expected one undone batch in history, got %+v", history)
	}
}

func TestEngineCopyUndoRemovesOnlyCopies(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	src := rig.write(t, "keeper.txt", "stay put")

	batch, _, err := rig.eng.Plan(ctx, rig.planRequest(models.OpCopy, models.StrategyRename), []string{rig.dir}, byTypeRouter(t))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if _, err := rig.eng.Execute(ctx, batch); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	copied := filepath.Join(rig.dir, "Documents", "keeper.txt")
	requireFileContent(t, src, "stay put")
	requireFileContent(t, copied, "stay put")

	undo, err := rig.eng.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !undo.Undone {
		t.Fatalf("Expected clean reversal, got %+v", undo)
	}

	requireFileContent(t, src, "stay put")
	requireMissing(t, copied)
}

func TestEngineRenameSequence(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.write(t, filepath.Join("Images", "photo.jpg"), "the incumbent")
	rig.write(t, "photo.jpg", "first newcomer")

	batch, _, err := rig.eng.Plan(ctx, rig.planRequest(models.OpMove, models.StrategyRename), []string{rig.dir}, byTypeRouter(t))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if _, err := rig.eng.Execute(ctx, batch); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	requireFileContent(t, filepath.Join(rig.dir, "Images", "photo_1.jpg"), "first newcomer")

	rig.write(t, "photo.jpg", "second newcomer")
	batch, _, err = rig.eng.Plan(ctx, rig.planRequest(models.OpMove, models.StrategyRename), []string{rig.dir}, byTypeRouter(t))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if _, err := rig.eng.Execute(ctx, batch); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	requireFileContent(t, filepath.Join(rig.dir, "Images", "photo_2.jpg"), "second newcomer")

	// The file that was never part of a batch is untouched
	requireFileContent(t, filepath.Join(rig.dir, "Images", "photo.jpg"), "the incumbent")
}

func TestEngineRoutesByDate(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	path := rig.write(t, "archive.zip", "zipped")
	stamp := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}

	tpl, err := rules.ForMode(models.ModeByDate)
	if err != nil {
		t.Fatalf("Failed to build by-date template: %v", err)
	}
	router := rules.NewRouter(nil, tpl)

	batch, _, err := rig.eng.Plan(ctx, rig.planRequest(models.OpMove, models.StrategyRename), []string{rig.dir}, router)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if _, err := rig.eng.Execute(ctx, batch); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	requireFileContent(t, filepath.Join(rig.dir, "2024", "03", "archive.zip"), "zipped")
}

func TestEngineAbsentMetadataRoutesToUnknown(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.write(t, "notes.txt", "no camera here")

	tpl, err := rules.ForMode(models.ModeByCamera)
	if err != nil {
		t.Fatalf("Failed to build by-camera template: %v", err)
	}
	router := rules.NewRouter(nil, tpl)

	batch, _, err := rig.eng.Plan(ctx, rig.planRequest(models.OpMove, models.StrategyRename), []string{rig.dir}, router)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if _, err := rig.eng.Execute(ctx, batch); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	requireFileContent(t, filepath.Join(rig.dir, "Unknown", "notes.txt"), "no camera here")
}

func TestEngineFindDuplicatesScenario(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	a := rig.write(t, "a.jpg", "identical image bytes")
	b := rig.write(t, "b.jpg", "identical image bytes")
	rig.write(t, "c.jpg", "something else entirely")

	groups, failures, _, err := rig.eng.FindDuplicates(ctx, []string{rig.dir}, dedup.Options{}, nil)
	if err != nil {
		t.Fatalf("FindDuplicates failed: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("Unexpected failures: %+v", failures)
	}
	if len(groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(groups))
	}

	group := groups[0]
	if group.Canonical() != a {
		t.Errorf("Canonical = %s, want %s", group.Canonical(), a)
	}
	dups := group.Duplicates()
	if len(dups) != 1 || dups[0] != b {
		t.Errorf("Duplicates = %v, want [%s]", dups, b)
	}

	// Feed the duplicates into the delete path
	var victims []models.FileDescriptor
	for _, path := range dups {
		victims = append(victims, models.FileDescriptor{Path: path})
	}
	batch := rig.eng.PlanDeletes("duplicates --delete", victims)
	report, err := rig.eng.Execute(ctx, batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("Succeeded = %d, want 1", report.Succeeded)
	}
	requireMissing(t, b)
	requireFileContent(t, a, "identical image bytes")

	// Deletions are permanent, never undoable
	if _, err := rig.eng.Undo(ctx); !errors.Is(err, journal.ErrNothingToUndo) {
		t.Errorf("Expected ErrNothingToUndo, got %v", err)
	}
}
