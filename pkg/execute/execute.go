// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package execute applies planned operations to the filesystem and reverses
// them. Preview walks the same code path without writing anything. Apply
// re-validates each operation against the live filesystem immediately before
// mutating, because the plan's existence oracle may be stale by then.
package execute

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/smv/pkg/history"
	"github.com/walteh/smv/pkg/plan"
)

// Status is the per-operation outcome.
type Status int

const (
	StatusApplied Status = iota + 1
	StatusPreviewed
	StatusSkipped
	StatusConflict
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusPreviewed:
		return "previewed"
	case StatusSkipped:
		return "skipped"
	case StatusConflict:
		return "conflict"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OpResult pairs a planned operation with what happened to it.
type OpResult struct {
	Op     plan.Operation
	Status Status
	Err    error
}

// Report summarizes one execution pass.
type Report struct {
	Results   []OpResult
	Applied   int
	Previewed int
	Skipped   int
	Conflicts int
	Failed    int

	// Entry is the history entry recording the applied operations. Nil for
	// previews and for batches where nothing was applied.
	Entry *history.Entry
}

func (r *Report) count(res OpResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusApplied:
		r.Applied++
	case StatusPreviewed:
		r.Previewed++
	case StatusSkipped:
		r.Skipped++
	case StatusConflict:
		r.Conflicts++
	case StatusFailed:
		r.Failed++
	}
}

// Engine applies and reverses operation batches against one history store.
type Engine struct {
	store *history.Store
}

func NewEngine(store *history.Store) *Engine {
	return &Engine{store: store}
}

// Preview reports what Execute would do without touching the filesystem.
func (e *Engine) Preview(ops []plan.Operation) *Report {
	report := &Report{}
	for _, op := range ops {
		switch op.State {
		case plan.StateNoOp:
			report.count(OpResult{Op: op, Status: StatusSkipped})
		case plan.StateConflict:
			report.count(OpResult{Op: op, Status: StatusConflict})
		default:
			report.count(OpResult{Op: op, Status: StatusPreviewed})
		}
	}
	return report
}

// Execute applies the batch. Conflicted and no-op operations are skipped. A
// stale operation (the filesystem no longer matches the plan) fails that
// operation only; a real I/O failure stops the batch, and everything applied
// before it is still recorded in history so it stays undoable.
func (e *Engine) Execute(ctx context.Context, ops []plan.Operation) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	report := &Report{}

	var records []history.OperationRecord
	var fatal error

	for _, op := range ops {
		switch op.State {
		case plan.StateNoOp:
			report.count(OpResult{Op: op, Status: StatusSkipped})
			continue
		case plan.StateConflict:
			report.count(OpResult{Op: op, Status: StatusConflict})
			continue
		}

		if err := e.revalidate(op); err != nil {
			logger.Warn().Str("source", op.Source).Err(err).Msg("plan is stale, skipping operation")
			report.count(OpResult{Op: op, Status: StatusFailed, Err: err})
			continue
		}

		record, err := e.apply(op)
		if err != nil {
			report.count(OpResult{Op: op, Status: StatusFailed, Err: err})
			fatal = err
			break
		}

		logger.Debug().
			Str("kind", op.Kind.String()).
			Str("source", op.Source).
			Str("destination", op.Destination).
			Msg("applied operation")
		report.count(OpResult{Op: op, Status: StatusApplied})
		records = append(records, record)
	}

	if len(records) > 0 {
		entry, err := e.store.Append(ctx, records)
		if err != nil {
			return report, errors.Errorf("recording applied operations: %w", err)
		}
		report.Entry = entry
	}

	if fatal != nil {
		return report, errors.Errorf("executing batch: %w", fatal)
	}
	return report, nil
}

// revalidate checks the live filesystem against what the plan assumed.
func (e *Engine) revalidate(op plan.Operation) error {
	switch op.Kind {
	case plan.OpRename, plan.OpMove, plan.OpCopy:
		if _, err := os.Lstat(op.Source); err != nil {
			return errors.Errorf("source %s disappeared: %w", op.Source, err)
		}
		if op.State != plan.StateOverwriteAllowed {
			if _, err := os.Lstat(op.Destination); err == nil {
				return errors.Errorf("destination %s appeared since planning", op.Destination)
			}
		}
	case plan.OpRemove:
		if _, err := os.Lstat(op.Source); err != nil {
			return errors.Errorf("source %s disappeared: %w", op.Source, err)
		}
	case plan.OpMkdir, plan.OpTouch:
		if _, err := os.Lstat(op.Destination); err == nil {
			return errors.Errorf("target %s appeared since planning", op.Destination)
		}
	}
	return nil
}

// apply performs one mutation, saving backups for content that would
// otherwise be unrecoverable: removed files and overwritten destinations.
func (e *Engine) apply(op plan.Operation) (history.OperationRecord, error) {
	record := history.OperationRecord{
		Kind:        op.Kind.String(),
		Source:      op.Source,
		Destination: op.Destination,
	}

	switch op.Kind {
	case plan.OpRename, plan.OpMove:
		if op.State == plan.StateOverwriteAllowed {
			id, err := e.store.Backup(op.Destination)
			if err != nil {
				return record, err
			}
			record.BackupID = id
		}
		if err := os.MkdirAll(filepath.Dir(op.Destination), 0755); err != nil {
			return record, errors.Errorf("creating parent of %s: %w", op.Destination, err)
		}
		if err := os.Rename(op.Source, op.Destination); err != nil {
			return record, errors.Errorf("renaming %s: %w", op.Source, err)
		}

	case plan.OpCopy:
		if op.State == plan.StateOverwriteAllowed {
			id, err := e.store.Backup(op.Destination)
			if err != nil {
				return record, err
			}
			record.BackupID = id
		}
		if err := copyFile(op.Source, op.Destination); err != nil {
			return record, err
		}

	case plan.OpRemove:
		info, err := os.Lstat(op.Source)
		if err != nil {
			return record, errors.Errorf("inspecting %s: %w", op.Source, err)
		}
		if info.Mode().IsRegular() {
			id, err := e.store.Backup(op.Source)
			if err != nil {
				return record, err
			}
			record.BackupID = id
		}
		if err := os.Remove(op.Source); err != nil {
			return record, errors.Errorf("removing %s: %w", op.Source, err)
		}

	case plan.OpMkdir:
		if err := os.MkdirAll(op.Destination, 0755); err != nil {
			return record, errors.Errorf("creating directory %s: %w", op.Destination, err)
		}

	case plan.OpTouch:
		f, err := os.OpenFile(op.Destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return record, errors.Errorf("creating %s: %w", op.Destination, err)
		}
		f.Close()

	default:
		return record, errors.Errorf("cannot apply operation kind %s", op.Kind)
	}

	return record, nil
}

func copyFile(source, dest string) error {
	src, err := os.Open(source)
	if err != nil {
		return errors.Errorf("opening %s: %w", source, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return errors.Errorf("reading mode of %s: %w", source, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Errorf("creating parent of %s: %w", dest, err)
	}

	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating %s: %w", dest, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Errorf("copying %s to %s: %w", source, dest, err)
	}
	return nil
}

// Undo reverses the newest entry that has not already been undone and marks
// it undone. Operations are reversed newest-first within the entry.
func (e *Engine) Undo(ctx context.Context) (*history.Entry, error) {
	logger := zerolog.Ctx(ctx)

	entry, err := e.store.LatestUndoable()
	if err != nil {
		return nil, err
	}

	for i := len(entry.Ops) - 1; i >= 0; i-- {
		op := entry.Ops[i]
		if err := e.reverse(op); err != nil {
			return nil, errors.Errorf("undoing %s of %s: %w", op.Kind, op.Source, err)
		}
		logger.Debug().Str("kind", op.Kind).Str("source", op.Source).Msg("reversed operation")
	}

	if err := e.store.MarkUndone(entry.Seq); err != nil {
		return nil, err
	}
	return entry, nil
}

func (e *Engine) reverse(op history.OperationRecord) error {
	switch op.Kind {
	case "rename", "move":
		if err := os.Rename(op.Destination, op.Source); err != nil {
			return errors.Errorf("renaming %s back: %w", op.Destination, err)
		}
		if op.BackupID != "" {
			// The forward operation overwrote the destination; put the old
			// content back.
			if err := e.store.Restore(op.BackupID, op.Destination); err != nil {
				return err
			}
			return e.store.RemoveBackup(op.BackupID)
		}

	case "copy":
		if err := os.Remove(op.Destination); err != nil && !os.IsNotExist(err) {
			return errors.Errorf("deleting copy %s: %w", op.Destination, err)
		}
		if op.BackupID != "" {
			if err := e.store.Restore(op.BackupID, op.Destination); err != nil {
				return err
			}
			return e.store.RemoveBackup(op.BackupID)
		}

	case "remove":
		if op.BackupID == "" {
			// Directories are removed without a content backup.
			return os.MkdirAll(op.Source, 0755)
		}
		if err := e.store.Restore(op.BackupID, op.Source); err != nil {
			return err
		}
		return e.store.RemoveBackup(op.BackupID)

	case "mkdir", "touch":
		if err := os.Remove(op.Destination); err != nil && !os.IsNotExist(err) {
			return errors.Errorf("deleting created %s: %w", op.Destination, err)
		}

	default:
		return errors.Errorf("cannot reverse operation kind %q", op.Kind)
	}
	return nil
}
