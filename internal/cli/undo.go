package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidyfs/tidyfs/pkg/journal"
	"github.com/tidyfs/tidyfs/pkg/storage"
)

// NewUndoCommand creates the undo command
func NewUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent batch",
		Long: `Revert the most recent organize batch by moving every file back to
where it came from. Files that were moved or changed since are left in
place and reported; run undo again after resolving them.

Deletions are not revertible. Files removed via the trash can be
recovered from the trash directory by hand.`,
		RunE: runUndo,
	}
}

func runUndo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyGlobalFlags(cfg)

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	jnl, err := openJournal(cfg, logger)
	if err != nil {
		return err
	}
	defer jnl.Close()

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	report, err := jnl.Undo(ctx, storage.NewLocal())
	if errors.Is(err, journal.ErrNothingToUndo) {
		fmt.Println("Nothing to undo")
		return nil
	}
	if err != nil {
		return fmt.Errorf("undo failed: %w", err)
	}

	if !cfg.Output.Quiet {
		formatter.UndoSummary(report)
	}
	if !report.Undone {
		os.Exit(1)
	}
	return nil
}
