package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tidyfs/tidyfs/pkg/config"
	"github.com/tidyfs/tidyfs/pkg/models"
	"github.com/tidyfs/tidyfs/pkg/organize"
	"github.com/tidyfs/tidyfs/pkg/output"
	"github.com/tidyfs/tidyfs/pkg/rules"
)

// OrganizeFlags holds organize command flags
type OrganizeFlags struct {
	// Mode toggles, mutually exclusive
	ByType      bool
	ByDate      bool
	ByExtension bool
	ByCamera    bool
	ByDateTaken bool
	ByArtist    bool
	ByAlbum     bool

	Template  string
	Preset    string
	RulesFile string

	Copy           bool
	Recursive      bool
	Execute        bool
	OnConflict     string
	Hidden         bool
	FollowSymlinks bool
	Exclude        []string

	Filters FilterFlags
}

var organizeFlags OrganizeFlags

// NewOrganizeCommand creates the organize command
func NewOrganizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize [roots...]",
		Short: "Sort files into folders",
		Long: `Sort the files under one or more directories into a folder layout
derived from what each file is: its category, dates, camera model or
audio tags. With no roots the current directory is organized.

The command previews by default; pass --execute to apply the plan.
Every applied batch is journaled and can be reverted with undo.`,
		RunE: runOrganize,
	}

	// Mode flags
	cmd.Flags().BoolVar(&organizeFlags.ByType, "by-type", false, "sort into category folders (Images, Documents, ...)")
	cmd.Flags().BoolVar(&organizeFlags.ByDate, "by-date", false, "sort into year/month folders by modification date")
	cmd.Flags().BoolVar(&organizeFlags.ByExtension, "by-extension", false, "sort into one folder per file extension")
	cmd.Flags().BoolVar(&organizeFlags.ByCamera, "by-camera", false, "sort photos into one folder per camera model")
	cmd.Flags().BoolVar(&organizeFlags.ByDateTaken, "by-date-taken", false, "sort photos into year/month folders by date taken")
	cmd.Flags().BoolVar(&organizeFlags.ByArtist, "by-artist", false, "sort audio files into one folder per artist")
	cmd.Flags().BoolVar(&organizeFlags.ByAlbum, "by-album", false, "sort audio files into artist/album folders")

	// Destination templates and rules
	cmd.Flags().StringVarP(&organizeFlags.Template, "template", "t", "", "destination template (e.g. \"{category}/{year}/{filename}\")")
	cmd.Flags().StringVar(&organizeFlags.Preset, "preset", "", "named destination preset (e.g. photos, music)")
	cmd.Flags().StringVar(&organizeFlags.RulesFile, "rules", "", "rules file with per-pattern destinations")

	// Behaviour flags
	cmd.Flags().BoolVar(&organizeFlags.Copy, "copy", false, "copy files instead of moving them")
	cmd.Flags().BoolVarP(&organizeFlags.Recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVarP(&organizeFlags.Execute, "execute", "x", false, "apply the plan (default is a dry-run preview)")
	cmd.Flags().StringVar(&organizeFlags.OnConflict, "on-conflict", "", "collision strategy: skip, overwrite, rename, ask, dedup, backup")
	cmd.Flags().BoolVar(&organizeFlags.Hidden, "hidden", false, "include hidden files and directories")
	cmd.Flags().BoolVar(&organizeFlags.FollowSymlinks, "follow-symlinks", false, "organize symlinked files through their targets")
	cmd.Flags().StringSliceVar(&organizeFlags.Exclude, "ignore", []string{}, "glob patterns to skip")

	AddFilterFlags(cmd, &organizeFlags.Filters)

	return cmd
}

func runOrganize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate roots
	roots, err := validateRoots(args)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyGlobalFlags(cfg)
	applyOrganizeFlags(cfg)

	// Resolve the conflict strategy; buildEngine reads it back to
	// decide whether to attach the interactive prompt
	if organizeFlags.OnConflict != "" {
		strategy := models.ConflictStrategy(organizeFlags.OnConflict)
		if !models.ValidStrategies[strategy] {
			return fmt.Errorf("invalid conflict strategy: %s (valid: skip, overwrite, rename, ask, dedup, backup)", organizeFlags.OnConflict)
		}
		cfg.Organize.Conflict = strategy
	}

	// Build the destination router
	router, err := buildRouter(cfg)
	if err != nil {
		return err
	}

	// Assemble scanner filters
	filters, err := buildFilters(&organizeFlags.Filters)
	if err != nil {
		return err
	}

	// Create logger
	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// Create engine
	scanner := newScanner(cfg, organizeFlags.Recursive, organizeFlags.Exclude, filters)
	engine, jnl, err := buildEngine(cfg, logger, scanner, !organizeFlags.Execute)
	if err != nil {
		return err
	}
	defer jnl.Close()

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	kind := models.OpMove
	if organizeFlags.Copy {
		kind = models.OpCopy
	}

	// Plan
	batch, scanReport, err := engine.Plan(ctx, organize.PlanRequest{
		Root:     roots[0],
		Kind:     kind,
		Strategy: cfg.Organize.Conflict,
		Command:  commandLine(),
	}, roots, router)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	if !cfg.Output.Quiet {
		formatter.PlanSummary(batch, scanReport)
	}
	if batch.IsEmpty() {
		return nil
	}
	if !organizeFlags.Execute {
		return nil
	}

	// Execute
	if pw := progressWriter(cfg); pw != nil {
		bar := output.NewBar(pw, batch.PendingCount(), "organize")
		engine.SetProgress(bar.StepOp)
		defer bar.Finish()
	}

	report, err := engine.Execute(ctx, batch)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	if !cfg.Output.Quiet {
		formatter.ExecutionSummary(report)
	}

	// Exit with appropriate code
	os.Exit(report.Status.ExitCode())
	return nil
}

// applyOrganizeFlags overrides config values with command-line flags
func applyOrganizeFlags(cfg *config.Config) {
	if organizeFlags.Hidden {
		cfg.Organize.IncludeHidden = true
	}
	if organizeFlags.FollowSymlinks {
		cfg.Organize.FollowSymlinks = true
	}
	if mode, ok := selectedMode(); ok {
		cfg.Organize.Mode = mode
	}
}

// selectedMode maps the boolean mode toggles onto an organize mode.
func selectedMode() (models.OrganizeMode, bool) {
	switch {
	case organizeFlags.ByAlbum:
		return models.ModeByAlbum, true
	case organizeFlags.ByArtist:
		return models.ModeByArtist, true
	case organizeFlags.ByDateTaken:
		return models.ModeByDateTaken, true
	case organizeFlags.ByCamera:
		return models.ModeByCamera, true
	case organizeFlags.ByExtension:
		return models.ModeByExtension, true
	case organizeFlags.ByDate:
		return models.ModeByDate, true
	case organizeFlags.ByType:
		return models.ModeByType, true
	default:
		return "", false
	}
}

// modeFlagCount counts how many destination selectors were given.
func modeFlagCount() int {
	count := 0
	for _, set := range []bool{
		organizeFlags.ByType, organizeFlags.ByDate, organizeFlags.ByExtension,
		organizeFlags.ByCamera, organizeFlags.ByDateTaken,
		organizeFlags.ByArtist, organizeFlags.ByAlbum,
		organizeFlags.Template != "", organizeFlags.Preset != "",
	} {
		if set {
			count++
		}
	}
	return count
}

// pickTemplate resolves the fallback destination template from the
// flags, or from the configured mode when no flag was given.
func pickTemplate(cfg *config.Config) (*rules.Template, error) {
	if modeFlagCount() > 1 {
		return nil, fmt.Errorf("pick a single destination: one mode flag, --template or --preset")
	}

	if organizeFlags.Template != "" {
		// Accepts a preset name here too, so -t photos just works
		return rules.Resolve(organizeFlags.Template)
	}
	if organizeFlags.Preset != "" {
		raw, ok := rules.Preset(organizeFlags.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", organizeFlags.Preset)
		}
		return rules.NewTemplate(raw)
	}
	return rules.ForMode(cfg.Organize.Mode)
}

// buildRouter combines the rules file with the fallback template.
func buildRouter(cfg *config.Config) (*rules.Router, error) {
	fallback, err := pickTemplate(cfg)
	if err != nil {
		return nil, err
	}

	// Explicit rules file, or the configured one when present
	rulesPath := organizeFlags.RulesFile
	if rulesPath == "" {
		if p, pathErr := cfg.RulesPath(); pathErr == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				rulesPath = p
			}
		}
	}

	var set *rules.Set
	if rulesPath != "" {
		set, err = rules.LoadSet(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
	}

	return rules.NewRouter(set, fallback), nil
}

// commandLine reconstructs the invocation recorded in the journal.
func commandLine() string {
	return strings.Join(os.Args[1:], " ")
}
