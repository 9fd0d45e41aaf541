package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSnapshot_Shallow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "aaa")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "bb")

	metas, err := Snapshot(context.Background(), dir, Options{})
	require.NoError(t, err)

	require.Len(t, metas, 2) // a.txt and sub, not sub/b.txt

	byName := map[string]FileMeta{}
	for _, m := range metas {
		byName[m.Name] = m
	}

	a := byName["a.txt"]
	assert.Equal(t, TypeFile, a.Type)
	assert.Equal(t, int64(3), a.Size)
	assert.Equal(t, 1, a.Depth)

	sub := byName["sub"]
	assert.Equal(t, TypeFolder, sub.Type)
}

func TestSnapshot_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "sub", "deep", "c.txt"), "c")

	metas, err := Snapshot(context.Background(), dir, Options{Recursive: true, Workers: 2})
	require.NoError(t, err)

	byName := map[string]FileMeta{}
	for _, m := range metas {
		byName[m.Name] = m
	}

	require.Contains(t, byName, "c.txt")
	assert.Equal(t, 3, byName["c.txt"].Depth)
	assert.Equal(t, 2, byName["b.txt"].Depth)
	assert.Equal(t, 1, byName["a.txt"].Depth)
	assert.Equal(t, TypeFolder, byName["sub"].Type)

	// Paths come back sorted for deterministic planning.
	for i := 1; i < len(metas); i++ {
		assert.Less(t, metas[i-1].Path, metas[i].Path)
	}
}

func TestSnapshot_SymlinkType(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	writeFile(t, target, "x")
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	metas, err := Snapshot(context.Background(), dir, Options{})
	require.NoError(t, err)

	byName := map[string]FileMeta{}
	for _, m := range metas {
		byName[m.Name] = m
	}
	assert.Equal(t, TypeSymlink, byName["link.txt"].Type)
	assert.Equal(t, TypeFile, byName["target.txt"].Type)
}

func TestSnapshot_MissingRoot(t *testing.T) {
	_, err := Snapshot(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
}

func TestParseFileType(t *testing.T) {
	for s, want := range map[string]FileType{
		"file":    TypeFile,
		"folder":  TypeFolder,
		"symlink": TypeSymlink,
		"other":   TypeOther,
	} {
		got, ok := ParseFileType(s)
		require.True(t, ok, s)
		assert.Equal(t, want, got)
	}

	_, ok := ParseFileType("socket")
	assert.False(t, ok)
}
