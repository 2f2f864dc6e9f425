package models

// ConflictStrategy is the policy applied when a planned destination
// already exists. A single strategy applies uniformly across a batch.
type ConflictStrategy string

const (
	// StrategySkip drops the operation from the batch
	StrategySkip ConflictStrategy = "skip"
	// StrategyOverwrite replaces the existing destination
	StrategyOverwrite ConflictStrategy = "overwrite"
	// StrategyRename picks the lowest unused name_1, name_2, ... suffix
	StrategyRename ConflictStrategy = "rename"
	// StrategyAsk defers to an interactive decision, Skip in batch mode
	StrategyAsk ConflictStrategy = "ask"
	// StrategyDeduplicate skips when content is identical, renames otherwise
	StrategyDeduplicate ConflictStrategy = "dedup"
	// StrategyBackup moves the existing destination aside, then proceeds
	StrategyBackup ConflictStrategy = "backup"
)

// ValidStrategies maps every accepted conflict strategy name.
var ValidStrategies = map[ConflictStrategy]bool{
	StrategySkip:        true,
	StrategyOverwrite:   true,
	StrategyRename:      true,
	StrategyAsk:         true,
	StrategyDeduplicate: true,
	StrategyBackup:      true,
}

// ParseConflictStrategy maps a user-supplied name to a strategy.
// Unknown names return Rename, the safe default.
func ParseConflictStrategy(s string) ConflictStrategy {
	strategy := ConflictStrategy(s)
	if ValidStrategies[strategy] {
		return strategy
	}
	return StrategyRename
}

// ConflictOutcome is the terminal state of a resolved collision
type ConflictOutcome string

const (
	// OutcomeProceed means the destination was free or freed
	OutcomeProceed ConflictOutcome = "proceed"
	// OutcomeDrop means the operation was removed from the batch
	OutcomeDrop ConflictOutcome = "drop"
	// OutcomeReplace means the existing destination will be overwritten
	OutcomeReplace ConflictOutcome = "replace"
	// OutcomeRenamed means a numbered alternative destination was chosen
	OutcomeRenamed ConflictOutcome = "renamed"
	// OutcomeBackedUp means the existing file was moved aside first
	OutcomeBackedUp ConflictOutcome = "backed-up"
)

// Conflict records one destination collision and how it was settled
type Conflict struct {
	// Source is the file whose planned destination collided
	Source string

	// Destination is the colliding path
	Destination string

	// Strategy that was applied
	Strategy ConflictStrategy

	// Outcome after resolution
	Outcome ConflictOutcome

	// RenamedTo is the alternative destination when Outcome is renamed
	RenamedTo string

	// BackupPath is where the existing file was moved when backed up
	BackupPath string
}
