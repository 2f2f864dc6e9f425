package models

import (
	"time"
)

// OpKind is the kind of filesystem mutation an operation performs
type OpKind string

const (
	// OpMove renames the file, falling back to copy+delete across devices
	OpMove OpKind = "move"
	// OpCopy duplicates the file, leaving the source untouched
	OpCopy OpKind = "copy"
	// OpDelete removes the file, optionally via the trash collaborator
	OpDelete OpKind = "delete"
)

// OpStatus tracks an operation through planning and execution
type OpStatus string

const (
	// StatusPending means the operation has not been attempted yet
	StatusPending OpStatus = "pending"
	// StatusDone means the mutation succeeded and was journaled
	StatusDone OpStatus = "done"
	// StatusFailed means the mutation failed; the batch continued
	StatusFailed OpStatus = "failed"
	// StatusSkipped means conflict resolution dropped the operation
	StatusSkipped OpStatus = "skipped"
)

// PlannedOperation is one entry of an executable batch
type PlannedOperation struct {
	// Source is the absolute path of the file being operated on
	Source string

	// Destination is the absolute target path, empty for delete
	Destination string

	// Kind is the mutation to perform
	Kind OpKind

	// Status reflects planning and execution outcome
	Status OpStatus

	// Resolution notes how a destination conflict was settled, if any
	Resolution string

	// Reason explains a skip or failure
	Reason string

	// Size is the source file size in bytes at plan time
	Size int64

	// Rule names the custom rule that routed this file, empty otherwise
	Rule string

	// PostAction is the shell hook to run after success, empty for none
	PostAction string

	// Duration is how long execution took
	Duration time.Duration
}

// OrganizeMode selects a built-in destination template
type OrganizeMode string

const (
	// ModeByType files into {category}/
	ModeByType OrganizeMode = "by-type"
	// ModeByDate files into {year}/{month}/
	ModeByDate OrganizeMode = "by-date"
	// ModeByExtension files into {ext}/
	ModeByExtension OrganizeMode = "by-extension"
	// ModeByCamera files into {camera}/
	ModeByCamera OrganizeMode = "by-camera"
	// ModeByDateTaken files into {taken.year}/{taken.month}/
	ModeByDateTaken OrganizeMode = "by-date-taken"
	// ModeByArtist files into {artist}/
	ModeByArtist OrganizeMode = "by-artist"
	// ModeByAlbum files into {artist}/{album}/
	ModeByAlbum OrganizeMode = "by-album"
)

// ValidModes maps every accepted organize mode name.
var ValidModes = map[OrganizeMode]bool{
	ModeByType:      true,
	ModeByDate:      true,
	ModeByExtension: true,
	ModeByCamera:    true,
	ModeByDateTaken: true,
	ModeByArtist:    true,
	ModeByAlbum:     true,
}

// Batch is an ordered set of planned operations produced by one planning
// call. It is executed and undone as a single unit of history.
type Batch struct {
	// ID uniquely identifies the batch across journal records
	ID string

	// Root is the organize root destinations are relative to
	Root string

	// Command is the human description recorded in the journal
	Command string

	// Strategy is the conflict strategy applied uniformly to the batch
	Strategy ConflictStrategy

	// Operations in execution order
	Operations []PlannedOperation

	// Conflicts records every destination collision that was resolved
	Conflicts []Conflict

	// CreatedAt is when planning finished
	CreatedAt time.Time
}

// IsEmpty reports whether the batch contains no executable operations.
func (b *Batch) IsEmpty() bool {
	return b.PendingCount() == 0
}

// PendingCount returns the number of operations awaiting execution.
func (b *Batch) PendingCount() int {
	n := 0
	for i := range b.Operations {
		if b.Operations[i].Status == StatusPending {
			n++
		}
	}
	return n
}

// TotalBytes sums the sizes of all pending operations.
func (b *Batch) TotalBytes() int64 {
	var total int64
	for i := range b.Operations {
		if b.Operations[i].Status == StatusPending {
			total += b.Operations[i].Size
		}
	}
	return total
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
