// Package journal persists executed batches as an append-only JSONL log
// and reverses them. The journal file is the only state shared across
// invocations and is held under an exclusive lock while open.
package journal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/tidyfs/tidyfs/pkg/logging"
	"github.com/tidyfs/tidyfs/pkg/models"
)

var (
	// ErrLocked means another invocation holds the journal
	ErrLocked = errors.New("journal is locked by another process")

	// ErrNothingToUndo means no batch remains that can be reversed
	ErrNothingToUndo = errors.New("no batch available to undo")
)

// Record types, one per journal line.
const (
	recordBatch  = "batch"
	recordOp     = "op"
	recordUndone = "undone"
)

// DefaultMaxBatches is the retention count cap when none is configured.
const DefaultMaxBatches = 50

// maxLineSize bounds a single journal line during re-read.
const maxLineSize = 4 * 1024 * 1024

// record is the envelope of one journal line.
type record struct {
	Type      string           `json:"type"`
	BatchID   string           `json:"batch_id"`
	Timestamp time.Time        `json:"timestamp,omitempty"`
	Command   string           `json:"command,omitempty"`
	Op        *models.OpRecord `json:"op,omitempty"`
}

// Retention caps journal growth. Batches beyond MaxBatches or older
// than MaxAge are pruned before history is shown or undo acts.
type Retention struct {
	// MaxBatches keeps at most this many recent batches, 0 = default
	MaxBatches int

	// MaxAge drops batches older than this, 0 = unlimited
	MaxAge time.Duration
}

// Journal owns the on-disk log. All methods are safe for concurrent
// use; appends within one invocation are strictly ordered.
type Journal struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	lock      *flock.Flock
	retention Retention
	logger    logging.Logger
}

// Open acquires the journal exclusively and prepares it for appends.
// Returns ErrLocked when another process holds it.
func Open(path string, retention Retention, logger logging.Logger) (*Journal, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if retention.MaxBatches <= 0 {
		retention.MaxBatches = DefaultMaxBatches
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire journal lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	return &Journal{
		path:      path,
		file:      file,
		lock:      lock,
		retention: retention,
		logger:    logger,
	}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.path
}

// Close releases the file and the lock.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var first error
	if err := j.file.Close(); err != nil {
		first = err
	}
	if err := j.lock.Unlock(); err != nil && first == nil {
		first = err
	}
	return first
}

// BeginBatch writes the header line for a new batch.
func (j *Journal) BeginBatch(batchID, command string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.append(record{
		Type:      recordBatch,
		BatchID:   batchID,
		Timestamp: time.Now(),
		Command:   command,
	})
}

// AppendOp records one executed mutation. The executor calls this
// right after the filesystem change succeeds; only then is the
// operation considered durable.
func (j *Journal) AppendOp(batchID string, op models.OpRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.append(record{Type: recordOp, BatchID: batchID, Op: &op})
}

// MarkUndone appends the permanent undone marker for a batch.
func (j *Journal) MarkUndone(batchID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.append(record{Type: recordUndone, BatchID: batchID, Timestamp: time.Now()})
}

// append writes one line. Callers hold j.mu.
func (j *Journal) append(rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode journal record: %w", err)
	}
	data = append(data, '\n')
	if _, err := j.file.Write(data); err != nil {
		return fmt.Errorf("failed to append to journal: %w", err)
	}
	return nil
}

// Entries re-reads the log and reconstructs batches in append order.
func (j *Journal) Entries() ([]models.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.readEntries()
}

// History returns batches most recent first, after retention pruning.
func (j *Journal) History() ([]models.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.prune()
	if err != nil {
		return nil, err
	}

	out := make([]models.JournalEntry, len(entries))
	for i := range entries {
		out[len(entries)-1-i] = entries[i]
	}
	return out, nil
}

// readEntries parses the whole file. Corrupted or orphaned lines are
// skipped with a warning so one bad write never poisons history.
// Callers hold j.mu.
func (j *Journal) readEntries() ([]models.JournalEntry, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	defer f.Close()

	var entries []models.JournalEntry
	index := make(map[string]int)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			j.logger.Warn(context.Background(), "Skipping corrupted journal line", logging.Fields{
				"line":  lineNo,
				"error": err.Error(),
			})
			continue
		}

		switch rec.Type {
		case recordBatch:
			if _, seen := index[rec.BatchID]; seen {
				j.logger.Warn(context.Background(), "Skipping duplicate batch header", logging.Fields{
					"line":     lineNo,
					"batch_id": rec.BatchID,
				})
				continue
			}
			index[rec.BatchID] = len(entries)
			entries = append(entries, models.JournalEntry{
				BatchID:   rec.BatchID,
				Timestamp: rec.Timestamp,
				Command:   rec.Command,
			})
		case recordOp:
			i, seen := index[rec.BatchID]
			if !seen || rec.Op == nil {
				j.logger.Warn(context.Background(), "Skipping orphaned journal operation", logging.Fields{
					"line":     lineNo,
					"batch_id": rec.BatchID,
				})
				continue
			}
			entries[i].Operations = append(entries[i].Operations, *rec.Op)
		case recordUndone:
			i, seen := index[rec.BatchID]
			if !seen {
				j.logger.Warn(context.Background(), "Skipping undone marker for unknown batch", logging.Fields{
					"line":     lineNo,
					"batch_id": rec.BatchID,
				})
				continue
			}
			entries[i].Undone = true
		default:
			j.logger.Warn(context.Background(), "Skipping journal line of unknown type", logging.Fields{
				"line": lineNo,
				"type": rec.Type,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}

// prune applies retention, rewriting the file only when something
// drops. Returns the surviving entries in append order. Callers hold
// j.mu.
func (j *Journal) prune() ([]models.JournalEntry, error) {
	entries, err := j.readEntries()
	if err != nil {
		return nil, err
	}

	keep := entries
	if j.retention.MaxAge > 0 {
		cutoff := time.Now().Add(-j.retention.MaxAge)
		fresh := make([]models.JournalEntry, 0, len(keep))
		for i := range keep {
			if !keep[i].Timestamp.Before(cutoff) {
				fresh = append(fresh, keep[i])
			}
		}
		keep = fresh
	}
	if len(keep) > j.retention.MaxBatches {
		keep = keep[len(keep)-j.retention.MaxBatches:]
	}

	if len(keep) == len(entries) {
		return keep, nil
	}

	if err := j.rewrite(keep); err != nil {
		return nil, err
	}
	j.logger.Info(context.Background(), "Pruned journal", logging.Fields{
		"kept":    len(keep),
		"dropped": len(entries) - len(keep),
	})
	return keep, nil
}

// rewrite replaces the journal with the given entries via tmp+rename,
// then reopens the append handle. Callers hold j.mu.
func (j *Journal) rewrite(entries []models.JournalEntry) error {
	tmpPath := j.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create journal temp file: %w", err)
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := range entries {
		e := &entries[i]
		if err := encodeEntry(enc, e); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write journal temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close journal temp file: %w", err)
	}

	// Swap under the open append handle, then reopen it
	if err := j.file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to release journal for rewrite: %w", err)
	}
	renameErr := os.Rename(tmpPath, j.path)
	if renameErr != nil {
		os.Remove(tmpPath)
	}

	file, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to reopen journal: %w", err)
	}
	j.file = file

	if renameErr != nil {
		return fmt.Errorf("failed to finalize journal rewrite: %w", renameErr)
	}
	return nil
}

// encodeEntry re-emits one batch as its header, op and marker lines.
func encodeEntry(enc *json.Encoder, e *models.JournalEntry) error {
	header := record{
		Type:      recordBatch,
		BatchID:   e.BatchID,
		Timestamp: e.Timestamp,
		Command:   e.Command,
	}
	if err := enc.Encode(header); err != nil {
		return fmt.Errorf("failed to rewrite journal batch %s: %w", e.BatchID, err)
	}
	for i := range e.Operations {
		op := e.Operations[i]
		if err := enc.Encode(record{Type: recordOp, BatchID: e.BatchID, Op: &op}); err != nil {
			return fmt.Errorf("failed to rewrite journal batch %s: %w", e.BatchID, err)
		}
	}
	if e.Undone {
		if err := enc.Encode(record{Type: recordUndone, BatchID: e.BatchID}); err != nil {
			return fmt.Errorf("failed to rewrite journal batch %s: %w", e.BatchID, err)
		}
	}
	return nil
}
