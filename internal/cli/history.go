package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// HistoryFlags holds history command flags
type HistoryFlags struct {
	Limit int
}

var historyFlags HistoryFlags

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded batches",
		Long: `List the batches recorded in the journal, most recent first, with
their commands, operation counts and whether they can still be undone.`,
		RunE: runHistory,
	}

	cmd.Flags().IntVarP(&historyFlags.Limit, "limit", "n", 0, "show at most this many batches (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	entries, err := jnl.History()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if historyFlags.Limit > 0 && len(entries) > historyFlags.Limit {
		entries = entries[:historyFlags.Limit]
	}

	return formatter.History(entries)
}
