package models

import (
	"time"
)

// OpRecord is the journaled (source, destination, kind) triple of one
// executed mutation.
type OpRecord struct {
	// Source path at execution time
	Source string `json:"source"`

	// Destination path, empty for delete
	Destination string `json:"destination,omitempty"`

	// Kind of mutation performed
	Kind OpKind `json:"kind"`
}

// JournalEntry is one batch as recorded in the journal. The operation
// list holds only mutations that actually succeeded, in execution order.
type JournalEntry struct {
	// BatchID ties the entry to the batch that produced it
	BatchID string `json:"batch_id"`

	// Timestamp is when the batch started executing
	Timestamp time.Time `json:"timestamp"`

	// Command is the human description of the invocation
	Command string `json:"command"`

	// Operations executed, in order
	Operations []OpRecord `json:"operations"`

	// Undone is permanently true once the batch has been reversed
	Undone bool `json:"undone"`
}

// Undoable reports whether undo can act on this entry. Deletes have no
// inverse, so an entry qualifies only if it recorded at least one move
// or copy and has not been undone already.
func (e *JournalEntry) Undoable() bool {
	if e.Undone {
		return false
	}
	for i := range e.Operations {
		if e.Operations[i].Kind != OpDelete {
			return true
		}
	}
	return false
}
