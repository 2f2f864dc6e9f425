package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidyfs/tidyfs/pkg/dedup"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/output"
	"github.com/tidyfs/tidyfs/pkg/scan"
	"github.com/tidyfs/tidyfs/pkg/storage"
	"github.com/tidyfs/tidyfs/pkg/trash"
)

// DuplicatesFlags holds duplicates command flags
type DuplicatesFlags struct {
	Delete    bool
	Trash     bool
	Execute   bool
	JSONFile  string
	CSVFile   string
	Workers   int
	Bandwidth string

	Filters FilterFlags
}

var duplicatesFlags DuplicatesFlags

// NewDuplicatesCommand creates the duplicates command
func NewDuplicatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicates [roots...]",
		Short: "Find files with identical content",
		Long: `Find groups of byte-identical files under one or more directories.
Files are grouped by size first, then by content hash, so unique sizes
are never read. Within each group the first file in scan order is kept
as the canonical copy.

With --delete the redundant copies are removed; the command previews by
default and only deletes with --execute. Combine with --trash to move
them into the trash directory instead of deleting permanently.`,
		RunE: runDuplicates,
	}

	cmd.Flags().BoolVar(&duplicatesFlags.Delete, "delete", false, "remove every copy except the canonical one")
	cmd.Flags().BoolVar(&duplicatesFlags.Trash, "trash", false, "move removed copies to the trash instead of deleting")
	cmd.Flags().BoolVarP(&duplicatesFlags.Execute, "execute", "x", false, "apply deletions (default is a preview)")
	cmd.Flags().StringVar(&duplicatesFlags.JSONFile, "json", "", "write the groups to a JSON file")
	cmd.Flags().StringVar(&duplicatesFlags.CSVFile, "csv", "", "write the groups to a CSV file")
	cmd.Flags().IntVarP(&duplicatesFlags.Workers, "workers", "w", 0, "number of parallel hashing workers")
	cmd.Flags().StringVarP(&duplicatesFlags.Bandwidth, "bandwidth", "b", "", "read bandwidth limit (e.g. \"10M\", \"1G\")")

	AddFilterFlags(cmd, &duplicatesFlags.Filters)

	return cmd
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	roots, err := validateRoots(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyGlobalFlags(cfg)

	filters, err := buildFilters(&duplicatesFlags.Filters)
	if err != nil {
		return err
	}

	// Hashing options
	opts := dedup.Options{
		Workers:   cfg.Performance.MaxWorkers,
		RateLimit: cfg.Performance.BandwidthLimit,
	}
	if duplicatesFlags.Workers > 0 {
		opts.Workers = duplicatesFlags.Workers
	}
	if duplicatesFlags.Bandwidth != "" {
		limit, err := scan.ParseSize(duplicatesFlags.Bandwidth)
		if err != nil {
			return fmt.Errorf("invalid --bandwidth: %w", err)
		}
		opts.RateLimit = limit
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	scanner := newScanner(cfg, true, nil, filters)
	engine, jnl, err := buildEngine(cfg, logger, scanner, !duplicatesFlags.Execute)
	if err != nil {
		return err
	}
	defer jnl.Close()

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	// Hash with a progress bar when on a terminal
	var progress dedup.Progress
	if pw := progressWriter(cfg); pw != nil {
		bar := output.NewBar(pw, 0, "hashing")
		progress = bar.Step
		defer bar.Finish()
	}

	groups, failures, _, err := engine.FindDuplicates(ctx, roots, opts, progress)
	if err != nil {
		return fmt.Errorf("duplicate scan failed: %w", err)
	}

	if !cfg.Output.Quiet {
		formatter.DuplicateGroups(groups, failures)
	}

	// Exports
	if duplicatesFlags.JSONFile != "" {
		if err := output.WriteDuplicatesExport(groups, duplicatesFlags.JSONFile, "json"); err != nil {
			return fmt.Errorf("failed to write JSON export: %w", err)
		}
	}
	if duplicatesFlags.CSVFile != "" {
		if err := output.WriteDuplicatesExport(groups, duplicatesFlags.CSVFile, "csv"); err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
	}

	if !duplicatesFlags.Delete || len(groups) == 0 {
		return nil
	}

	// Plan removal of everything but the canonical copies
	var doomed []models.FileDescriptor
	for i := range groups {
		for _, path := range groups[i].Duplicates() {
			doomed = append(doomed, models.FileDescriptor{Path: path, Size: groups[i].Size})
		}
	}

	batch := engine.PlanDeletes(commandLine(), doomed)
	if !cfg.Output.Quiet {
		formatter.PlanSummary(batch, nil)
	}
	if !duplicatesFlags.Execute {
		return nil
	}

	if duplicatesFlags.Trash {
		trashDir, err := cfg.TrashDir()
		if err != nil {
			return err
		}
		engine.SetTrash(trash.NewLocal(storage.NewLocal(), trashDir, batch.ID))
	}

	report, err := engine.Execute(ctx, batch)
	if err != nil {
		return fmt.Errorf("deletion failed: %w", err)
	}
	if !cfg.Output.Quiet {
		formatter.ExecutionSummary(report)
	}

	os.Exit(report.Status.ExitCode())
	return nil
}
