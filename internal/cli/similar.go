package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tidyfs/tidyfs/pkg/dedup"
	"github.com/tidyfs/tidyfs/pkg/scan"
)

// SimilarFlags holds similar command flags
type SimilarFlags struct {
	Threshold int
	Workers   int
}

var similarFlags SimilarFlags

// NewSimilarCommand creates the similar command
func NewSimilarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar [roots...]",
		Short: "Find visually similar images",
		Long: `Find groups of near-identical images using perceptual hashing.
Images whose fingerprints differ by at most the threshold are grouped
together, resized copies and re-encodes included. A lower threshold
means a stricter match; 0 matches only visually identical images.`,
		RunE: runSimilar,
	}

	cmd.Flags().IntVarP(&similarFlags.Threshold, "threshold", "t", 0, "maximum fingerprint distance (0-64, default from config)")
	cmd.Flags().IntVarP(&similarFlags.Workers, "workers", "w", 0, "number of parallel decoding workers")

	return cmd
}

func runSimilar(cmd *cobra.Command, args []string) error {
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

	opts := dedup.SimilarOptions{
		Threshold: cfg.Similarity.Threshold,
		Workers:   cfg.Performance.MaxWorkers,
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = similarFlags.Threshold
	}
	if similarFlags.Workers > 0 {
		opts.Workers = similarFlags.Workers
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	scanner := newScanner(cfg, true, nil, scan.Filters{})
	engine, jnl, err := buildEngine(cfg, logger, scanner, true)
	if err != nil {
		return err
	}
	defer jnl.Close()

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	groups, failures, _, err := engine.FindSimilar(ctx, roots, opts)
	if err != nil {
		return fmt.Errorf("similarity scan failed: %w", err)
	}

	if !cfg.Output.Quiet {
		formatter.DuplicateGroups(groups, failures)
	}
	return nil
}
