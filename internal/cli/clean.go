package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidyfs/tidyfs/pkg/organize"
	"github.com/tidyfs/tidyfs/pkg/scan"
	"github.com/tidyfs/tidyfs/pkg/storage"
	"github.com/tidyfs/tidyfs/pkg/trash"
)

// CleanFlags holds clean command flags
type CleanFlags struct {
	OlderThan string
	EmptyDirs bool
	Trash     bool
	Execute   bool
	Hidden    bool
	Exclude   []string
}

var cleanFlags CleanFlags

// NewCleanCommand creates the clean command
func NewCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [roots...]",
		Short: "Remove stale files and empty directories",
		Long: `Remove files that have not been modified for a given time, and
optionally prune the empty directories left behind. The command
previews by default; pass --execute to apply.`,
		Example: `  tidyfs clean --older-than 30d ~/Downloads
  tidyfs clean --older-than 2w --trash --execute ~/Downloads
  tidyfs clean --empty-dirs --execute ~/Pictures`,
		RunE: runClean,
	}

	cmd.Flags().StringVar(&cleanFlags.OlderThan, "older-than", "", "remove files not modified for this long (e.g. \"30d\", \"2w\")")
	cmd.Flags().BoolVar(&cleanFlags.EmptyDirs, "empty-dirs", false, "remove empty directories")
	cmd.Flags().BoolVar(&cleanFlags.Trash, "trash", false, "move removed files to the trash instead of deleting")
	cmd.Flags().BoolVarP(&cleanFlags.Execute, "execute", "x", false, "apply removals (default is a preview)")
	cmd.Flags().BoolVar(&cleanFlags.Hidden, "hidden", false, "include hidden files and directories")
	cmd.Flags().StringSliceVar(&cleanFlags.Exclude, "ignore", []string{}, "glob patterns to skip")

	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cleanFlags.OlderThan == "" && !cleanFlags.EmptyDirs {
		return fmt.Errorf("nothing to clean: pass --older-than and/or --empty-dirs")
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
	if cleanFlags.Hidden {
		cfg.Organize.IncludeHidden = true
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	fs := storage.NewLocal()
	scanner := newScanner(cfg, true, cleanFlags.Exclude, scan.Filters{})
	cleaner := organize.NewCleaner(scanner, fs, logger)

	exitCode := 0

	// Stale files first, so directories they empty out are pruned below
	if cleanFlags.OlderThan != "" {
		age, err := scan.ParseAge(cleanFlags.OlderThan)
		if err != nil {
			return fmt.Errorf("invalid --older-than: %w", err)
		}

		engine, jnl, err := buildEngine(cfg, logger, scanner, !cleanFlags.Execute)
		if err != nil {
			return err
		}
		defer jnl.Close()

		formatter, err := newFormatter(cfg)
		if err != nil {
			return err
		}

		stale, scanReport, err := cleaner.OlderThan(ctx, roots, age)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		batch := engine.PlanDeletes(commandLine(), stale)
		if !cfg.Output.Quiet {
			formatter.PlanSummary(batch, scanReport)
		}

		if cleanFlags.Execute && !batch.IsEmpty() {
			if cleanFlags.Trash {
				trashDir, err := cfg.TrashDir()
				if err != nil {
					return err
				}
				engine.SetTrash(trash.NewLocal(fs, trashDir, batch.ID))
			}
			report, err := engine.Execute(ctx, batch)
			if err != nil {
				return fmt.Errorf("clean failed: %w", err)
			}
			if !cfg.Output.Quiet {
				formatter.ExecutionSummary(report)
			}
			exitCode = report.Status.ExitCode()
		}
	}

	// Then empty directories
	if cleanFlags.EmptyDirs {
		for _, root := range roots {
			if cleanFlags.Execute {
				removed, failures, err := cleaner.RemoveEmptyDirs(ctx, root)
				if err != nil {
					return fmt.Errorf("failed to remove empty directories: %w", err)
				}
				if !cfg.Output.Quiet {
					for _, dir := range removed {
						fmt.Printf("removed %s\n", dir)
					}
					for _, failure := range failures {
						fmt.Printf("failed %s: %s\n", failure.Path, failure.Reason)
					}
				}
				if len(failures) > 0 && exitCode == 0 {
					exitCode = 1
				}
			} else {
				empty, err := cleaner.EmptyDirs(ctx, root)
				if err != nil {
					return fmt.Errorf("failed to find empty directories: %w", err)
				}
				if !cfg.Output.Quiet {
					for _, dir := range empty {
						fmt.Printf("would remove %s\n", dir)
					}
				}
			}
		}
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
