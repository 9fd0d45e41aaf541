package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/smv/pkg/grammar"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_HCL(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, "config.hcl", `
backup_root  = "/tmp/smv-test"
max_history  = 100
scan_workers = 4

group "docs" {
  filters = ["EXT:md", "EXT:txt", "TYPE:file"]
}
`)

	cfg, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/smv-test", cfg.BackupRoot)
	assert.Equal(t, 100, cfg.MaxHistory)
	assert.Equal(t, 4, cfg.ScanWorkers)
	require.Len(t, cfg.Groups, 1)
	assert.Equal(t, "docs", cfg.Groups[0].Name)
	assert.Len(t, cfg.Groups[0].Filters, 3)
}

func TestLoad_YAML(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, "config.yaml", `
backup_root: /tmp/smv-test
max_history: 25
groups:
  - name: archives
    filters: ["EXT:zip", "EXT:tar"]
`)

	cfg, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxHistory)
	assert.Equal(t, DefaultScanWorkers, cfg.ScanWorkers, "unset values fall back to defaults")
	require.Len(t, cfg.Groups, 1)
	assert.Equal(t, "archives", cfg.Groups[0].Name)
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxHistory, cfg.MaxHistory)
	assert.Equal(t, DefaultScanWorkers, cfg.ScanWorkers)
	assert.NotEmpty(t, cfg.BackupRoot)
}

func TestLoad_UnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", `backup_root = "/tmp"`)
	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser found")
}

func TestValidate_BadGroupFilter(t *testing.T) {
	cfg := &Settings{
		Groups: []GroupDef{{Name: "broken", Filters: []string{"SIZE=1MB"}}},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestValidate_BadValues(t *testing.T) {
	err := (&Settings{MaxHistory: -1}).Validate()
	require.Error(t, err)

	err = (&Settings{ScanWorkers: -3}).Validate()
	require.Error(t, err)
}

func TestGroupRegistry(t *testing.T) {
	cfg := &Settings{
		Groups: []GroupDef{{Name: "docs", Filters: []string{"EXT:md", "TYPE:file"}}},
	}
	require.NoError(t, cfg.Validate())

	registry, err := cfg.GroupRegistry()
	require.NoError(t, err)

	clauses, ok := registry.Expand("docs")
	require.True(t, ok)
	require.Len(t, clauses, 2)
	assert.Equal(t, grammar.KeywordExt, clauses[0].Keyword)

	// Built-ins are still present.
	_, ok = registry.Expand("media")
	assert.True(t, ok)
}

func TestGroupRegistry_CannotShadowBuiltin(t *testing.T) {
	cfg := &Settings{
		Groups: []GroupDef{{Name: "media", Filters: []string{"EXT:flac"}}},
	}
	require.NoError(t, cfg.Validate())

	_, err := cfg.GroupRegistry()
	require.Error(t, err)
}
