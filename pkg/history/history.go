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

// Package history is the durable record of executed batches: an append-only
// log of entries plus a backup store of pre-mutation file content. Entries
// are immutable once appended; undo marks them undone instead of deleting
// them. The store assumes single-instance access — two processes racing on
// the same root is a documented limitation, not a handled case.
package history

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	historyFileName = "history.json"
	backupDirName   = "backups"
)

// OperationRecord is one applied mutation inside an entry.
type OperationRecord struct {
	Kind        string `json:"kind"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`

	// BackupID references saved pre-mutation content for destructive
	// operations. Empty when the operation is reversible without content
	// (a plain rename, or a copy whose undo is deletion).
	BackupID string `json:"backup_id,omitempty"`
}

// Entry records one executed batch. Immutable once appended, except for the
// Undone marker.
type Entry struct {
	Seq    uint64            `json:"seq"`
	Time   time.Time         `json:"time"`
	Ops    []OperationRecord `json:"operations"`
	Undone bool              `json:"undone"`
}

// Error reports a damaged or unusable history store. It disables undo and
// history listing; everything else keeps working.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("history: %s: %v", e.Reason, e.Err)
	}
	return "history: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// 🗄️ Store owns the history log and backup files under one root directory.
type Store struct {
	root       string
	maxEntries int
	entries    []Entry
	corrupt    *Error
}

// NewStore opens (or initializes) the store under root. A corrupt log does
// not fail construction: appends rotate the damaged file aside, while undo
// and listing report the corruption.
func NewStore(root string, maxEntries int) (*Store, error) {
	if maxEntries < 1 {
		return nil, errors.Errorf("max history size must be at least 1, got %d", maxEntries)
	}
	if err := os.MkdirAll(filepath.Join(root, backupDirName), 0755); err != nil {
		return nil, errors.Errorf("creating history root: %w", err)
	}

	s := &Store{root: root, maxEntries: maxEntries}

	data, err := os.ReadFile(s.historyPath())
	switch {
	case os.IsNotExist(err):
		// First run.
	case err != nil:
		return nil, errors.Errorf("reading history log: %w", err)
	default:
		if err := json.Unmarshal(data, &s.entries); err != nil {
			s.corrupt = &Error{Reason: "history log is corrupt", Err: err}
			s.entries = nil
		}
	}

	return s, nil
}

// Root returns the store root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) historyPath() string {
	return filepath.Join(s.root, historyFileName)
}

func (s *Store) backupPath(id string) string {
	return filepath.Join(s.root, backupDirName, id)
}

// Entries returns all recorded entries, oldest first.
func (s *Store) Entries() ([]Entry, error) {
	if s.corrupt != nil {
		return nil, s.corrupt
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// LatestUndoable returns the most recent entry that has not been undone.
func (s *Store) LatestUndoable() (*Entry, error) {
	if s.corrupt != nil {
		return nil, s.corrupt
	}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if !s.entries[i].Undone {
			entry := s.entries[i]
			return &entry, nil
		}
	}
	return nil, &Error{Reason: "nothing to undo"}
}

// Append records one executed batch with the next sequence id, evicting the
// oldest entries (and deleting their backups) beyond the configured maximum.
func (s *Store) Append(ctx context.Context, ops []OperationRecord) (*Entry, error) {
	logger := zerolog.Ctx(ctx)

	if s.corrupt != nil {
		// Keep recording: rotate the damaged log aside and start over.
		rotated := s.historyPath() + ".corrupt"
		if err := os.Rename(s.historyPath(), rotated); err != nil {
			return nil, errors.Errorf("rotating corrupt history log: %w", err)
		}
		logger.Warn().Str("rotated_to", rotated).Msg("history log was corrupt, starting a fresh log")
		s.corrupt = nil
		s.entries = nil
	}

	entry := Entry{
		Seq:  s.nextSeq(),
		Time: time.Now(),
		Ops:  ops,
	}
	s.entries = append(s.entries, entry)

	for len(s.entries) > s.maxEntries {
		evicted := s.entries[0]
		s.entries = s.entries[1:]
		for _, op := range evicted.Ops {
			if op.BackupID == "" {
				continue
			}
			if err := os.Remove(s.backupPath(op.BackupID)); err != nil && !os.IsNotExist(err) {
				logger.Warn().Err(err).Str("backup", op.BackupID).Msg("failed to delete evicted backup")
			}
		}
		logger.Debug().Uint64("seq", evicted.Seq).Msg("evicted history entry")
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarkUndone flips the undone marker so an entry cannot be undone twice.
func (s *Store) MarkUndone(seq uint64) error {
	if s.corrupt != nil {
		return s.corrupt
	}
	for i := range s.entries {
		if s.entries[i].Seq == seq {
			s.entries[i].Undone = true
			return s.save()
		}
	}
	return &Error{Reason: fmt.Sprintf("entry %d not found", seq)}
}

func (s *Store) nextSeq() uint64 {
	if len(s.entries) == 0 {
		return 1
	}
	return s.entries[len(s.entries)-1].Seq + 1
}

// save writes the log atomically (temp file + rename).
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errors.Errorf("encoding history log: %w", err)
	}

	tempPath := s.historyPath() + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Errorf("writing history log: %w", err)
	}
	if err := os.Rename(tempPath, s.historyPath()); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("replacing history log: %w", err)
	}
	return nil
}

// newBackupID builds a unique, human-traceable backup file name.
func newBackupID(path string) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixNano(), hex.EncodeToString(buf), filepath.Base(path))
}

// Backup copies a file's current content into the store and returns the
// backup id.
func (s *Store) Backup(path string) (string, error) {
	id := newBackupID(path)

	src, err := os.Open(path)
	if err != nil {
		return "", errors.Errorf("opening %s for backup: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", errors.Errorf("reading mode of %s: %w", path, err)
	}

	dst, err := os.OpenFile(s.backupPath(id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return "", errors.Errorf("creating backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(s.backupPath(id))
		return "", errors.Errorf("copying %s to backup: %w", path, err)
	}
	return id, nil
}

// Restore copies backed-up content to dest, creating parent directories.
func (s *Store) Restore(id, dest string) error {
	src, err := os.Open(s.backupPath(id))
	if err != nil {
		return &Error{Reason: "backup " + id + " is missing", Err: err}
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return errors.Errorf("reading backup mode: %w", err)
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
		return errors.Errorf("restoring %s: %w", dest, err)
	}
	return nil
}

// RemoveBackup deletes a backup consumed by undo.
func (s *Store) RemoveBackup(id string) error {
	if err := os.Remove(s.backupPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("deleting backup %s: %w", id, err)
	}
	return nil
}

// BackupExists reports whether a backup file is still present.
func (s *Store) BackupExists(id string) bool {
	_, err := os.Stat(s.backupPath(id))
	return err == nil
}
