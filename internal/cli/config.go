package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tidyfs/tidyfs/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the tidyfs configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Organize Mode: %s\n", cfg.Organize.Mode)
			fmt.Printf("On Conflict: %s\n", cfg.Organize.Conflict)
			fmt.Printf("Identity Check: %s\n", cfg.Organize.IdentityCheck)
			fmt.Printf("Include Hidden: %t\n", cfg.Organize.IncludeHidden)
			fmt.Printf("Follow Symlinks: %t\n", cfg.Organize.FollowSymlinks)
			fmt.Printf("Max Workers: %d\n", cfg.Performance.MaxWorkers)
			fmt.Printf("Similarity Threshold: %d\n", cfg.Similarity.Threshold)
			fmt.Printf("History Batches: %d\n", cfg.History.MaxBatches)
			fmt.Printf("Trash Enabled: %t\n", cfg.Trash.Enabled)
			fmt.Printf("Output Format: %s\n", cfg.Output.Format)

			if journalPath, err := cfg.JournalPath(); err == nil {
				fmt.Printf("Journal: %s\n", journalPath)
			}
			if trashDir, err := cfg.TrashDir(); err == nil {
				fmt.Printf("Trash: %s\n", trashDir)
			}

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}
