package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/tidyfs/tidyfs/internal/platform"
	"github.com/tidyfs/tidyfs/pkg/compare"
	"github.com/tidyfs/tidyfs/pkg/config"
	"github.com/tidyfs/tidyfs/pkg/journal"
	"github.com/tidyfs/tidyfs/pkg/logging"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/organize"
	"github.com/tidyfs/tidyfs/pkg/output"
	"github.com/tidyfs/tidyfs/pkg/ratelimit"
	"github.com/tidyfs/tidyfs/pkg/scan"
	"github.com/tidyfs/tidyfs/pkg/storage"
)

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyGlobalFlags overrides config values with global command-line flags
func applyGlobalFlags(cfg *config.Config) {
	// Output format
	if globalFlags.Output != "" {
		cfg.Output.Format = globalFlags.Output
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
	if globalFlags.NoProgress {
		cfg.Output.Progress = false
	}

	// JSON output would interleave with progress bars on the same stream
	if cfg.Output.Format == "json" {
		cfg.Output.Progress = false
	}

	// Logging overrides
	if globalFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
}

// validateRoots resolves and checks the directory arguments. Every
// root must exist and be a directory.
func validateRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	roots := make([]string, 0, len(args))
	for _, arg := range args {
		if err := platform.ValidatePath(arg); err != nil {
			return nil, err
		}

		expanded, err := platform.Expand(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}

		info, err := os.Stat(abs)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path does not exist: %s", arg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to access path: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("path is not a directory: %s", arg)
		}

		roots = append(roots, abs)
	}
	return roots, nil
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}

	format := logging.FormatText
	if cfg.Logging.Format == "json" {
		format = logging.FormatJSON
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       logPath,
		Format:     format,
		Level:      logging.ParseLevel(cfg.Logging.Level),
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxBackups: 5,
	})
}

// newFormatter selects the output formatter for the configured format.
func newFormatter(cfg *config.Config) (output.Formatter, error) {
	return output.ForFormat(cfg.Output.Format, os.Stdout)
}

// progressWriter returns the stream progress bars render to, or nil
// when progress is off or stdout is not a terminal.
func progressWriter(cfg *config.Config) io.Writer {
	if !cfg.Output.Progress {
		return nil
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	return os.Stdout
}

// newScanner builds a scanner from configuration plus per-command
// extras
func newScanner(cfg *config.Config, recursive bool, exclude []string, filters scan.Filters) *scan.Scanner {
	return scan.NewScanner(scan.Options{
		Recursive:      recursive,
		IncludeHidden:  cfg.Organize.IncludeHidden,
		FollowSymlinks: cfg.Organize.FollowSymlinks,
		IgnorePatterns: append(append([]string{}, cfg.Ignore...), exclude...),
		Filters:        filters,
	})
}

// openJournal opens the batch journal at the configured location.
func openJournal(cfg *config.Config, logger logging.Logger) (*journal.Journal, error) {
	path, err := cfg.JournalPath()
	if err != nil {
		return nil, err
	}

	retention := journal.Retention{
		MaxBatches: cfg.History.MaxBatches,
	}
	if cfg.History.MaxAgeDays > 0 {
		retention.MaxAge = time.Duration(cfg.History.MaxAgeDays) * 24 * time.Hour
	}
	return journal.Open(path, retention, logger)
}

// buildEngine wires the scanner, planner, executor and journal into a
// ready engine. The caller owns the returned journal and must close it.
func buildEngine(cfg *config.Config, logger logging.Logger, scanner *scan.Scanner, dryRun bool) (*organize.Engine, *journal.Journal, error) {
	fs := storage.NewLocal()
	fs.SetRateLimiter(ratelimit.NewLimiter(cfg.Performance.BandwidthLimit))

	jnl, err := openJournal(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cmp := compare.ForCheck(cfg.Organize.IdentityCheck, fs, cfg.Performance.BufferSize)

	planner := organize.NewPlanner(fs, cmp, logger)
	if cfg.Organize.Conflict == models.StrategyAsk && term.IsTerminal(int(os.Stdin.Fd())) {
		planner.SetDecider(promptDecider(os.Stdin, os.Stderr))
	}

	executor := organize.NewExecutor(fs, jnl, organize.ExecutorOptions{DryRun: dryRun}, logger)
	executor.SetHooks(organize.NewShellHook())

	eng := organize.NewEngine(scanner, planner, executor, jnl, fs, logger)
	eng.SetWorkers(cfg.Performance.MaxWorkers)
	return eng, jnl, nil
}

// promptDecider asks the user on the terminal how to resolve a
// collision
func promptDecider(in io.Reader, out io.Writer) organize.Decider {
	reader := bufio.NewReader(in)
	return organize.DeciderFunc(func(c models.Conflict) models.ConflictStrategy {
		fmt.Fprintf(out, "Conflict: %s already exists\n", c.Destination)
		fmt.Fprintf(out, "  [s]kip  [o]verwrite  [r]ename  [b]ackup ? ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return models.StrategySkip
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "o", "overwrite":
			return models.StrategyOverwrite
		case "r", "rename":
			return models.StrategyRename
		case "b", "backup":
			return models.StrategyBackup
		default:
			return models.StrategySkip
		}
	})
}

// buildFilters assembles scanner filters from the shared filter flags.
func buildFilters(ff *FilterFlags) (scan.Filters, error) {
	var filters scan.Filters

	if ff.MinSize != "" {
		size, err := scan.ParseSize(ff.MinSize)
		if err != nil {
			return filters, fmt.Errorf("invalid --min-size: %w", err)
		}
		filters.MinSize = size
	}
	if ff.MaxSize != "" {
		size, err := scan.ParseSize(ff.MaxSize)
		if err != nil {
			return filters, fmt.Errorf("invalid --max-size: %w", err)
		}
		filters.MaxSize = size
	}
	if ff.After != "" {
		date, err := scan.ParseDate(ff.After)
		if err != nil {
			return filters, fmt.Errorf("invalid --after: %w", err)
		}
		filters.After = date
	}
	if ff.Before != "" {
		date, err := scan.ParseDate(ff.Before)
		if err != nil {
			return filters, fmt.Errorf("invalid --before: %w", err)
		}
		filters.Before = date
	}
	if ff.Pattern != "" {
		re, err := regexp.Compile(ff.Pattern)
		if err != nil {
			return filters, fmt.Errorf("invalid --pattern: %w", err)
		}
		filters.Pattern = re
	}

	filters.Prefix = ff.Prefix
	filters.Suffix = ff.Suffix
	filters.Substring = ff.Contains
	filters.CaseInsensitive = ff.IgnoreCase
	filters.MIME = ff.MIME
	filters.Content = ff.Content

	return filters, nil
}
