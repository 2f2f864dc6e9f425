package trash

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidyfs/tidyfs/pkg/storage"
)

func trashTestDirs(t *testing.T) (string, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "trash-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "files"), filepath.Join(dir, "trash")
}

func writeTrashFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func readMeta(t *testing.T, batchDir string) metaFile {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(batchDir, metaFileName))
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}
	var meta metaFile
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("Failed to parse manifest: %v", err)
	}
	return meta
}

func TestLocalMoveTrashesFile(t *testing.T) {
	filesDir, trashDir := trashTestDirs(t)
	src := filepath.Join(filesDir, "doomed.txt")
	writeTrashFile(t, src, "save me")

	mover := NewLocal(storage.NewLocal(), trashDir, "batch-1")
	dest, err := mover.Move(context.Background(), src)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if _, err := os.Lstat(src); !os.IsNotExist(err) {
		t.Errorf("Expected source to be gone, stat err = %v", err)
	}

	wantDest := filepath.Join(trashDir, "batch-1", "doomed.txt")
	if dest != wantDest {
		t.Errorf("Trashed to %s, want %s", dest, wantDest)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Failed to read trashed file: %v", err)
	}
	if string(data) != "save me" {
		t.Errorf("Trashed content = %q, want %q", data, "save me")
	}

	meta := readMeta(t, filepath.Join(trashDir, "batch-1"))
	if meta.Version != metaVersion {
		t.Errorf("Manifest version = %d, want %d", meta.Version, metaVersion)
	}
	if len(meta.Files) != 1 {
		t.Fatalf("Expected 1 manifest entry, got %d", len(meta.Files))
	}
	entry := meta.Files[0]
	if entry.From != src || entry.To != dest {
		t.Errorf("Manifest entry = %+v", entry)
	}
	if entry.BatchID != "batch-1" {
		t.Errorf("BatchID = %s, want batch-1", entry.BatchID)
	}
	if entry.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}
}

func TestLocalMoveNameCollision(t *testing.T) {
	filesDir, trashDir := trashTestDirs(t)
	first := filepath.Join(filesDir, "a", "report.pdf")
	second := filepath.Join(filesDir, "b", "report.pdf")
	third := filepath.Join(filesDir, "c", "report.pdf")
	writeTrashFile(t, first, "one")
	writeTrashFile(t, second, "two")
	writeTrashFile(t, third, "three")

	mover := NewLocal(storage.NewLocal(), trashDir, "batch-1")
	ctx := context.Background()

	dest1, err := mover.Move(ctx, first)
	if err != nil {
		t.Fatalf("First move failed: %v", err)
	}
	dest2, err := mover.Move(ctx, second)
	if err != nil {
		t.Fatalf("Second move failed: %v", err)
	}
	dest3, err := mover.Move(ctx, third)
	if err != nil {
		t.Fatalf("Third move failed: %v", err)
	}

	batchDir := filepath.Join(trashDir, "batch-1")
	if dest1 != filepath.Join(batchDir, "report.pdf") {
		t.Errorf("dest1 = %s", dest1)
	}
	if dest2 != filepath.Join(batchDir, "report_1.pdf") {
		t.Errorf("dest2 = %s, want report_1.pdf", dest2)
	}
	if dest3 != filepath.Join(batchDir, "report_2.pdf") {
		t.Errorf("dest3 = %s, want report_2.pdf", dest3)
	}

	meta := readMeta(t, batchDir)
	if len(meta.Files) != 3 {
		t.Errorf("Expected 3 manifest entries, got %d", len(meta.Files))
	}
}

func TestLocalMoveSeparateBatches(t *testing.T) {
	filesDir, trashDir := trashTestDirs(t)
	src1 := filepath.Join(filesDir, "one.txt")
	src2 := filepath.Join(filesDir, "two.txt")
	writeTrashFile(t, src1, "1")
	writeTrashFile(t, src2, "2")

	fs := storage.NewLocal()
	ctx := context.Background()

	if _, err := NewLocal(fs, trashDir, "batch-1").Move(ctx, src1); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if _, err := NewLocal(fs, trashDir, "batch-2").Move(ctx, src2); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(trashDir, "batch-1", "one.txt")); err != nil {
		t.Errorf("batch-1 file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(trashDir, "batch-2", "two.txt")); err != nil {
		t.Errorf("batch-2 file missing: %v", err)
	}
}

func TestLocalMoveMissingSource(t *testing.T) {
	filesDir, trashDir := trashTestDirs(t)

	mover := NewLocal(storage.NewLocal(), trashDir, "batch-1")
	if _, err := mover.Move(context.Background(), filepath.Join(filesDir, "ghost.txt")); err == nil {
		t.Error("Expected error for missing source")
	}
}
