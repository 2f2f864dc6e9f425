package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tidyfs/tidyfs/pkg/classify"
	"github.com/tidyfs/tidyfs/pkg/output"
)

// StatsFlags holds stats command flags
type StatsFlags struct {
	JSONFile string
	Top      int
	Hidden   bool

	Filters FilterFlags
}

var statsFlags StatsFlags

// NewStatsCommand creates the stats command
func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [roots...]",
		Short: "Summarize disk usage by category",
		Long: `Summarize one or more directory trees: file and byte counts per
category, plus the largest and oldest files.`,
		RunE: runStats,
	}

	cmd.Flags().StringVar(&statsFlags.JSONFile, "json", "", "write the summary to a JSON file")
	cmd.Flags().IntVar(&statsFlags.Top, "top", classify.DefaultTopFiles, "how many largest and oldest files to list")
	cmd.Flags().BoolVar(&statsFlags.Hidden, "hidden", false, "include hidden files and directories")

	AddFilterFlags(cmd, &statsFlags.Filters)

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
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
	if statsFlags.Hidden {
		cfg.Organize.IncludeHidden = true
	}

	filters, err := buildFilters(&statsFlags.Filters)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	// Read-only, no journal or engine involved
	scanner := newScanner(cfg, true, nil, filters)
	files, _, err := scanner.ScanAll(ctx, roots)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	classify.Annotate(files)

	stats := classify.CollectStats(roots, files, statsFlags.Top)

	if !cfg.Output.Quiet {
		formatter.Stats(stats)
	}

	if statsFlags.JSONFile != "" {
		if err := output.WriteStatsExport(stats, statsFlags.JSONFile); err != nil {
			return fmt.Errorf("failed to write JSON export: %w", err)
		}
	}
	return nil
}
