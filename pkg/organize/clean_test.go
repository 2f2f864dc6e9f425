package organize

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidyfs/tidyfs/pkg/scan"
	"github.com/tidyfs/tidyfs/pkg/storage"
)

func newTestCleaner(t *testing.T) (*Cleaner, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "clean-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cleaner := NewCleaner(scan.NewScanner(scan.Options{Recursive: true}), storage.NewLocal(), nil)
	return cleaner, dir
}

func TestCleanerOlderThan(t *testing.T) {
	cleaner, dir := newTestCleaner(t)

	stale := filepath.Join(dir, "stale.log")
	fresh := filepath.Join(dir, "fresh.log")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", p, err)
		}
	}
	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("Failed to age %s: %v", stale, err)
	}

	files, _, err := cleaner.OlderThan(context.Background(), []string{dir}, 24*time.Hour)
	if err != nil {
		t.Fatalf("OlderThan failed: %v", err)
	}
	if len(files) != 1 || files[0].Path != stale {
		t.Errorf("OlderThan = %+v, want only %s", files, stale)
	}
}

func TestCleanerEmptyDirs(t *testing.T) {
	cleaner, dir := newTestCleaner(t)

	// a/b is empty, which makes a empty too; c holds a file
	if err := os.MkdirAll(filepath.Join(dir, "a", "b"), 0755); err != nil {
		t.Fatalf("Failed to create dirs: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "c"), 0755); err != nil {
		t.Fatalf("Failed to create dirs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c", "keep.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	dirs, err := cleaner.EmptyDirs(context.Background(), dir)
	if err != nil {
		t.Fatalf("EmptyDirs failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a", "b"), filepath.Join(dir, "a")}
	if len(dirs) != len(want) {
		t.Fatalf("EmptyDirs = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dirs[%d] = %s, want %s", i, dirs[i], want[i])
		}
	}
}

func TestCleanerRemoveEmptyDirs(t *testing.T) {
	cleaner, dir := newTestCleaner(t)

	if err := os.MkdirAll(filepath.Join(dir, "a", "b"), 0755); err != nil {
		t.Fatalf("Failed to create dirs: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "c"), 0755); err != nil {
		t.Fatalf("Failed to create dirs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c", "keep.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	removed, failures, err := cleaner.RemoveEmptyDirs(context.Background(), dir)
	if err != nil {
		t.Fatalf("RemoveEmptyDirs failed: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("Unexpected failures: %+v", failures)
	}
	if len(removed) != 2 {
		t.Fatalf("Removed = %v, want 2 directories", removed)
	}

	requireMissing(t, filepath.Join(dir, "a"))
	requireFileContent(t, filepath.Join(dir, "c", "keep.txt"), "x")
}
