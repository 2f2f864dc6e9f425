package organize

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/tidyfs/tidyfs/pkg/journal"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/trash"
)

func TestExecutorJournalsOperationsInOrder(t *testing.T) {
	rig := newTestRig(t)
	rig.write(t, "a.txt", "alpha")
	rig.write(t, "b.txt", "beta")

	batch := planOnly(t, rig, models.OpMove, models.StrategyRename)
	if batch.PendingCount() != 2 {
		t.Fatalf("Expected 2 pending operations, got %d", batch.PendingCount())
	}

	if _, err := rig.eng.Execute(context.Background(), batch); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	entries, err := rig.jnl.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 journal entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.BatchID != batch.ID {
		t.Errorf("BatchID = %s, want %s", entry.BatchID, batch.ID)
	}
	if len(entry.Operations) != 2 {
		t.Fatalf("Expected 2 journaled operations, got %d", len(entry.Operations))
	}
	for i, op := range batch.Operations {
		if entry.Operations[i].Source != op.Source {
			t.Errorf("Operations[%d].Source = %s, want %s", i, entry.Operations[i].Source, op.Source)
		}
		if entry.Operations[i].Destination != op.Destination {
			t.Errorf("Operations[%d].Destination = %s, want %s", i, entry.Operations[i].Destination, op.Destination)
		}
	}
}

func TestExecutorFailureContinuesBatch(t *testing.T) {
	rig := newTestRig(t)
	rig.write(t, "real.txt", "present")

	batch := planOnly(t, rig, models.OpMove, models.StrategyRename)
	// Prepend an operation whose source vanished between plan and run
	ghost := models.PlannedOperation{
		Source:      filepath.Join(rig.dir, "ghost.txt"),
		Destination: filepath.Join(rig.dir, "Documents", "ghost.txt"),
		Kind:        models.OpMove,
		Status:      models.StatusPending,
	}
	batch.Operations = append([]models.PlannedOperation{ghost}, batch.Operations...)

	report, err := rig.eng.Execute(context.Background(), batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Failed != 1 || report.Succeeded != 1 {
		t.Fatalf("Failed = %d, Succeeded = %d, want 1 and 1", report.Failed, report.Succeeded)
	}
	if report.Status != models.BatchPartial {
		t.Errorf("Status = %s, want partial", report.Status)
	}
	if report.Status.ExitCode() != 1 {
		t.Errorf("ExitCode = %d, want 1", report.Status.ExitCode())
	}
	if len(report.Failures) != 1 || report.Failures[0].Path != ghost.Source {
		t.Errorf("Failures = %+v", report.Failures)
	}
	requireFileContent(t, filepath.Join(rig.dir, "Documents", "real.txt"), "present")

	// Only the mutation that happened is journaled
	entries, err := rig.jnl.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Operations) != 1 {
		t.Fatalf("Expected exactly the surviving operation in the journal, got %+v", entries)
	}
	if entries[0].Operations[0].Source != filepath.Join(rig.dir, "real.txt") {
		t.Errorf("Journaled source = %s", entries[0].Operations[0].Source)
	}
}

func TestExecutorDryRun(t *testing.T) {
	rig := newTestRig(t)
	rig.write(t, "doc.pdf", "contents")

	batch := planOnly(t, rig, models.OpMove, models.StrategyRename)

	exec := NewExecutor(rig.fs, rig.jnl, ExecutorOptions{DryRun: true}, nil)
	report, err := exec.Execute(context.Background(), batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !report.DryRun {
		t.Error("Report should be flagged as a dry run")
	}
	if report.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", report.Succeeded)
	}

	requireFileContent(t, filepath.Join(rig.dir, "doc.pdf"), "contents")
	requireMissing(t, filepath.Join(rig.dir, "Documents", "doc.pdf"))

	entries, err := rig.jnl.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Dry run must not journal, got %d entries", len(entries))
	}
}

func TestExecutorCancellationBetweenOperations(t *testing.T) {
	rig := newTestRig(t)
	rig.write(t, "one.txt", "1")
	rig.write(t, "two.txt", "2")
	rig.write(t, "three.txt", "3")

	batch := planOnly(t, rig, models.OpMove, models.StrategyRename)
	if batch.PendingCount() != 3 {
		t.Fatalf("Expected 3 pending operations, got %d", batch.PendingCount())
	}

	ctx, cancel := context.WithCancel(context.Background())
	rig.eng.executor.SetProgress(func(done, total int, op *models.PlannedOperation) {
		if done == 1 {
			cancel()
		}
	})

	report, err := rig.eng.Execute(ctx, batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Status != models.BatchCancelled {
		t.Errorf("Status = %s, want cancelled", report.Status)
	}
	if report.Status.ExitCode() != 3 {
		t.Errorf("ExitCode = %d, want 3", report.Status.ExitCode())
	}
	if report.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", report.Succeeded)
	}

	// The completed operation is journaled; the rest never ran
	entries, err := rig.jnl.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Operations) != 1 {
		t.Fatalf("Expected 1 journaled operation, got %+v", entries)
	}
}

func TestExecutorTrashRoutesDeletes(t *testing.T) {
	rig := newTestRig(t)
	doomed := rig.write(t, "doomed.txt", "bye")

	batch := rig.eng.PlanDeletes("duplicates --delete", []models.FileDescriptor{
		{Path: doomed, Size: 3},
	})
	trashDir := filepath.Join(rig.dir, ".trash")
	rig.eng.executor.SetTrash(trash.NewLocal(rig.fs, trashDir, batch.ID))

	report, err := rig.eng.Execute(context.Background(), batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("Succeeded = %d, want 1", report.Succeeded)
	}

	requireMissing(t, doomed)
	requireFileContent(t, filepath.Join(trashDir, batch.ID, "doomed.txt"), "bye")

	// Delete-only batches are journaled but never undoable
	if _, err := rig.eng.Undo(context.Background()); err != journal.ErrNothingToUndo {
		t.Errorf("Undo error = %v, want ErrNothingToUndo", err)
	}
}

func TestExecutorPermanentDelete(t *testing.T) {
	rig := newTestRig(t)
	doomed := rig.write(t, "doomed.txt", "bye")

	batch := rig.eng.PlanDeletes("clean --stale", []models.FileDescriptor{
		{Path: doomed, Size: 3},
	})

	report, err := rig.eng.Execute(context.Background(), batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("Succeeded = %d, want 1", report.Succeeded)
	}
	requireMissing(t, doomed)
}

func TestExecutorRunsPostAction(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("post action test uses sh")
	}
	rig := newTestRig(t)
	rig.write(t, "song.mp3", "audio")

	batch := planOnly(t, rig, models.OpMove, models.StrategyRename)
	if batch.PendingCount() != 1 {
		t.Fatalf("Expected 1 pending operation, got %d", batch.PendingCount())
	}
	batch.Operations[0].PostAction = "touch {dir}/hooked-{name}"

	report, err := rig.eng.Execute(context.Background(), batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Succeeded != 1 || len(report.Failures) != 0 {
		t.Fatalf("Report = %+v", report)
	}

	marker := filepath.Join(rig.dir, "Audio", "hooked-song")
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("Hook marker missing: %v", err)
	}
}

func TestExecutorHookFailureIsReportedNotFatal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("post action test uses sh")
	}
	rig := newTestRig(t)
	rig.write(t, "song.mp3", "audio")

	batch := planOnly(t, rig, models.OpMove, models.StrategyRename)
	batch.Operations[0].PostAction = "exit 3"

	report, err := rig.eng.Execute(context.Background(), batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 0 {
		t.Fatalf("Hook failure must not fail the operation, got %+v", report)
	}
	if report.Status != models.BatchSuccess {
		t.Errorf("Status = %s, want success", report.Status)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("Expected the hook failure to be reported, got %+v", report.Failures)
	}
	requireFileContent(t, filepath.Join(rig.dir, "Audio", "song.mp3"), "audio")
}

func TestExecutorEmptyBatchSkipsJournal(t *testing.T) {
	rig := newTestRig(t)

	batch := planOnly(t, rig, models.OpMove, models.StrategyRename)
	if !batch.IsEmpty() {
		t.Fatalf("Expected an empty batch, got %+v", batch.Operations)
	}

	report, err := rig.eng.Execute(context.Background(), batch)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Status != models.BatchSuccess {
		t.Errorf("Status = %s, want success", report.Status)
	}

	entries, err := rig.jnl.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Empty batch must not journal, got %d entries", len(entries))
	}
}

func TestShellHookPlaceholders(t *testing.T) {
	got := expandHookPlaceholders(
		"cp {file} {dest} && echo {name} {ext} {dir}",
		"/in/report.pdf",
		"/out/Documents/report.pdf",
	)
	want := "cp /in/report.pdf /out/Documents/report.pdf && echo report pdf /out/Documents"
	if got != want {
		t.Errorf("Expanded = %q, want %q", got, want)
	}

	// No extension leaves {ext} empty
	got = expandHookPlaceholders("x {name}.{ext}.", "/in/Makefile", "/out/Other/Makefile")
	if got != "x Makefile.." {
		t.Errorf("Expanded = %q, want %q", got, "x Makefile..")
	}
}
