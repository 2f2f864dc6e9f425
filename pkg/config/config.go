package config

import (
	"github.com/tidyfs/tidyfs/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Organize    OrganizeConfig    `yaml:"organize"`
	RulesFile   string            `yaml:"rules_file"`
	Performance PerformanceConfig `yaml:"performance"`
	Similarity  SimilarityConfig  `yaml:"similarity"`
	History     HistoryConfig     `yaml:"history"`
	Trash       TrashConfig       `yaml:"trash"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Ignore      []string          `yaml:"ignore"`
}

// OrganizeConfig holds organizing defaults
type OrganizeConfig struct {
	Mode           models.OrganizeMode     `yaml:"mode"`
	Conflict       models.ConflictStrategy `yaml:"conflict"`
	IdentityCheck  models.IdentityCheck    `yaml:"identity_check"`
	IncludeHidden  bool                    `yaml:"include_hidden"`
	FollowSymlinks bool                    `yaml:"follow_symlinks"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int   `yaml:"max_workers"`
	BufferSize     int   `yaml:"buffer_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"`
}

// SimilarityConfig holds image similarity settings
type SimilarityConfig struct {
	Threshold int `yaml:"threshold"`
}

// HistoryConfig holds journal and retention settings
type HistoryConfig struct {
	JournalFile string `yaml:"journal_file"` // empty = default location
	MaxBatches  int    `yaml:"max_batches"`
	MaxAgeDays  int    `yaml:"max_age_days"` // 0 = unlimited
}

// TrashConfig holds trash settings
type TrashConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // empty = default location
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = default location)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Organize: OrganizeConfig{
			Mode:           models.ModeByType,
			Conflict:       models.StrategyRename,
			IdentityCheck:  models.CheckHash,
			IncludeHidden:  false,
			FollowSymlinks: false,
		},
		Performance: PerformanceConfig{
			MaxWorkers:     4,
			BufferSize:     65536,
			BandwidthLimit: 0,
		},
		Similarity: SimilarityConfig{
			Threshold: 5,
		},
		History: HistoryConfig{
			MaxBatches: 50,
			MaxAgeDays: 0,
		},
		Trash: TrashConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
		Ignore: []string{
			"*.tmp",
			"*.part",
			".git/**",
			"node_modules/**",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !models.ValidModes[c.Organize.Mode] {
		return &models.ValidationError{
			Field:   "organize.mode",
			Message: "unknown organize mode '" + string(c.Organize.Mode) + "'",
		}
	}

	if !models.ValidStrategies[c.Organize.Conflict] {
		return &models.ValidationError{
			Field:   "organize.conflict",
			Message: "unknown conflict strategy '" + string(c.Organize.Conflict) + "'",
		}
	}

	if !models.ValidIdentityChecks[c.Organize.IdentityCheck] {
		return &models.ValidationError{
			Field:   "organize.identity_check",
			Message: "must be 'hash', 'md5', or 'binary'",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	if c.Similarity.Threshold < 0 || c.Similarity.Threshold > 64 {
		return &models.ValidationError{
			Field:   "similarity.threshold",
			Message: "must be between 0 and 64",
		}
	}

	if c.History.MaxBatches < 0 {
		return &models.ValidationError{
			Field:   "history.max_batches",
			Message: "must not be negative",
		}
	}

	if c.History.MaxAgeDays < 0 {
		return &models.ValidationError{
			Field:   "history.max_age_days",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
