package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidyfs/tidyfs/pkg/models"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default configuration must validate, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown mode", func(c *Config) { c.Organize.Mode = "by-vibes" }, "organize.mode"},
		{"unknown strategy", func(c *Config) { c.Organize.Conflict = "punt" }, "organize.conflict"},
		{"unknown identity check", func(c *Config) { c.Organize.IdentityCheck = "sha1" }, "organize.identity_check"},
		{"zero workers", func(c *Config) { c.Performance.MaxWorkers = 0 }, "performance.max_workers"},
		{"tiny buffer", func(c *Config) { c.Performance.BufferSize = 12 }, "performance.buffer_size"},
		{"negative bandwidth", func(c *Config) { c.Performance.BandwidthLimit = -1 }, "performance.bandwidth_limit"},
		{"threshold too high", func(c *Config) { c.Similarity.Threshold = 65 }, "similarity.threshold"},
		{"negative retention", func(c *Config) { c.History.MaxBatches = -1 }, "history.max_batches"},
		{"unknown output format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Error %q does not name field %s", err, tt.field)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Organize.Mode = models.ModeByDate
	cfg.Organize.Conflict = models.StrategyBackup
	cfg.Similarity.Threshold = 12
	cfg.History.MaxBatches = 7
	cfg.Trash.Enabled = false
	cfg.Ignore = []string{"*.bak"}

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Organize.Mode != models.ModeByDate {
		t.Errorf("Mode = %s, want by-date", loaded.Organize.Mode)
	}
	if loaded.Organize.Conflict != models.StrategyBackup {
		t.Errorf("Conflict = %s, want backup", loaded.Organize.Conflict)
	}
	if loaded.Similarity.Threshold != 12 || loaded.History.MaxBatches != 7 {
		t.Errorf("Threshold = %d, MaxBatches = %d", loaded.Similarity.Threshold, loaded.History.MaxBatches)
	}
	if loaded.Trash.Enabled {
		t.Error("Trash.Enabled should round-trip false")
	}
	if len(loaded.Ignore) != 1 || loaded.Ignore[0] != "*.bak" {
		t.Errorf("Ignore = %v", loaded.Ignore)
	}
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	// A sparse file only overrides what it names
	path := filepath.Join(dir, "config.yaml")
	sparse := "organize:\n  mode: by-extension\n"
	if err := os.WriteFile(path, []byte(sparse), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Organize.Mode != models.ModeByExtension {
		t.Errorf("Mode = %s, want by-extension", cfg.Organize.Mode)
	}
	if cfg.Performance.MaxWorkers != 4 {
		t.Errorf("MaxWorkers = %d, want default 4", cfg.Performance.MaxWorkers)
	}
	if cfg.Output.Format != "human" {
		t.Errorf("Format = %s, want default human", cfg.Output.Format)
	}
}

func TestLoadFromFileRejectsInvalid(t *testing.T) {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "config.yaml")
	bad := "similarity:\n  threshold: 99\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected error for out-of-range threshold")
	}
}

func TestPathDefaults(t *testing.T) {
	cfg := Default()

	journal, err := cfg.JournalPath()
	if err != nil {
		t.Fatalf("JournalPath failed: %v", err)
	}
	if filepath.Base(journal) != "journal.jsonl" {
		t.Errorf("JournalPath = %s", journal)
	}

	cfg.History.JournalFile = filepath.Join(string(filepath.Separator), "var", "tidy", "j.jsonl")
	journal, err = cfg.JournalPath()
	if err != nil {
		t.Fatalf("JournalPath failed: %v", err)
	}
	if journal != cfg.History.JournalFile {
		t.Errorf("JournalPath = %s, want the configured path", journal)
	}

	trash, err := cfg.TrashDir()
	if err != nil {
		t.Fatalf("TrashDir failed: %v", err)
	}
	if filepath.Base(trash) != "trash" {
		t.Errorf("TrashDir = %s", trash)
	}

	rules, err := cfg.RulesPath()
	if err != nil {
		t.Fatalf("RulesPath failed: %v", err)
	}
	if filepath.Base(rules) != "rules.toml" {
		t.Errorf("RulesPath = %s", rules)
	}
}
