package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndSequence(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	first, err := store.Append(ctx, []OperationRecord{{Kind: "rename", Source: "a", Destination: "b"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Seq)

	second, err := store.Append(ctx, []OperationRecord{{Kind: "remove", Source: "c"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Seq)

	entries, err := store.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "rename", entries[0].Ops[0].Kind)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := NewStore(root, 10)
	require.NoError(t, err)
	_, err = store.Append(ctx, []OperationRecord{{Kind: "rename", Source: "a", Destination: "b"}})
	require.NoError(t, err)

	reopened, err := NewStore(root, 10)
	require.NoError(t, err)
	entries, err := reopened.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(1), entries[0].Seq)
}

func TestStore_FIFOEviction(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewStore(root, 3)
	require.NoError(t, err)

	// Give the first entry a real backup so eviction has something to delete.
	victim := filepath.Join(t.TempDir(), "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("old content"), 0644))
	backupID, err := store.Backup(victim)
	require.NoError(t, err)
	require.True(t, store.BackupExists(backupID))

	_, err = store.Append(ctx, []OperationRecord{{Kind: "remove", Source: victim, BackupID: backupID}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = store.Append(ctx, []OperationRecord{{Kind: "rename", Source: "x", Destination: "y"}})
		require.NoError(t, err)
	}

	entries, err := store.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(2), entries[0].Seq, "oldest entry evicted")
	assert.False(t, store.BackupExists(backupID), "evicted entry's backup deleted")
}

func TestStore_BackupAndRestore(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	dir := t.TempDir()
	original := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(original, []byte("precious"), 0600))

	id, err := store.Backup(original)
	require.NoError(t, err)

	require.NoError(t, os.Remove(original))

	require.NoError(t, store.Restore(id, original))
	content, err := os.ReadFile(original)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(content))

	require.NoError(t, store.RemoveBackup(id))
	assert.False(t, store.BackupExists(id))
}

func TestStore_LatestUndoable(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	_, err = store.LatestUndoable()
	require.Error(t, err)

	first, err := store.Append(ctx, []OperationRecord{{Kind: "rename", Source: "a", Destination: "b"}})
	require.NoError(t, err)
	second, err := store.Append(ctx, []OperationRecord{{Kind: "rename", Source: "c", Destination: "d"}})
	require.NoError(t, err)

	got, err := store.LatestUndoable()
	require.NoError(t, err)
	assert.Equal(t, second.Seq, got.Seq)

	require.NoError(t, store.MarkUndone(second.Seq))

	got, err = store.LatestUndoable()
	require.NoError(t, err)
	assert.Equal(t, first.Seq, got.Seq, "undone entries are skipped")

	require.NoError(t, store.MarkUndone(first.Seq))
	_, err = store.LatestUndoable()
	require.Error(t, err, "an entry cannot be undone twice")
}

func TestStore_CorruptLog(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "history.json"), []byte("{not json"), 0644))

	store, err := NewStore(root, 10)
	require.NoError(t, err, "a corrupt log must not crash construction")

	_, err = store.Entries()
	var histErr *Error
	require.ErrorAs(t, err, &histErr)

	_, err = store.LatestUndoable()
	require.ErrorAs(t, err, &histErr)

	// Appending rotates the damaged log aside and starts fresh.
	entry, err := store.Append(ctx, []OperationRecord{{Kind: "rename", Source: "a", Destination: "b"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), entry.Seq)
	assert.FileExists(t, filepath.Join(root, "history.json.corrupt"))

	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
