package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Output     string
	Verbose    bool
	Quiet      bool
	NoProgress bool
	LogFile    string
	LogLevel   string
}

var globalFlags GlobalFlags

// FilterFlags holds the file selection flags shared by the scanning
// commands
type FilterFlags struct {
	MinSize    string
	MaxSize    string
	After      string
	Before     string
	Prefix     string
	Suffix     string
	Contains   string
	IgnoreCase bool
	Pattern    string
	MIME       string
	Content    string
}

// AddFilterFlags registers the shared file selection flags on a command
func AddFilterFlags(cmd *cobra.Command, ff *FilterFlags) {
	cmd.Flags().StringVar(&ff.MinSize, "min-size", "", "only files at least this large (e.g. \"100KB\", \"1.5MB\")")
	cmd.Flags().StringVar(&ff.MaxSize, "max-size", "", "only files at most this large")
	cmd.Flags().StringVar(&ff.After, "after", "", "only files modified on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ff.Before, "before", "", "only files modified before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ff.Prefix, "prefix", "", "only files whose name starts with this prefix")
	cmd.Flags().StringVar(&ff.Suffix, "suffix", "", "only files whose name (without extension) ends with this suffix")
	cmd.Flags().StringVar(&ff.Contains, "contains", "", "only files whose name contains this substring")
	cmd.Flags().BoolVar(&ff.IgnoreCase, "ignore-case", false, "match prefix, suffix and substring case-insensitively")
	cmd.Flags().StringVar(&ff.Pattern, "pattern", "", "only files whose name matches this regular expression")
	cmd.Flags().StringVar(&ff.MIME, "mime", "", "only files of this MIME type, wildcards allowed (e.g. \"image/*\")")
	cmd.Flags().StringVar(&ff.Content, "content", "", "only text files containing this string")
}

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/tidyfs/config.yaml)",
	)
	cmd.PersistentFlags().StringVarP(
		&globalFlags.Output,
		"output",
		"o",
		"",
		"output format: human, json",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().BoolVar(
		&globalFlags.NoProgress,
		"no-progress",
		false,
		"disable progress bars",
	)
	cmd.PersistentFlags().StringVar(
		&globalFlags.LogFile,
		"log-file",
		"",
		"write logs to file (enables logging)",
	)
	cmd.PersistentFlags().StringVar(
		&globalFlags.LogLevel,
		"log-level",
		"",
		"log level: debug, info, warn, error",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}
