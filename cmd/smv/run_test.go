package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/smv/pkg/execute"
	"github.com/walteh/smv/pkg/grammar"
	"github.com/walteh/smv/pkg/plan"
	"github.com/walteh/smv/pkg/route"
)

func TestExtractGlobalOpts(t *testing.T) {
	args, opts, err := extractGlobalOpts([]string{
		"--config", "my.hcl", "snake", "./notes", "EXT:md", "-r", "--debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "my.hcl", opts.configFile)
	assert.True(t, opts.debug)
	assert.Equal(t, []string{"snake", "./notes", "EXT:md", "-r"}, args,
		"grammar tokens pass through untouched")

	_, _, err = extractGlobalOpts([]string{"--config"})
	require.Error(t, err)

	_, opts, err = extractGlobalOpts([]string{"--config=other.yaml", "--version"})
	require.NoError(t, err)
	assert.Equal(t, "other.yaml", opts.configFile)
	assert.True(t, opts.version)
}

func TestExitCodeFor(t *testing.T) {
	parseErr := &grammar.ParseError{Kind: grammar.ErrUnknownCommand, Raw: "bogus"}
	assert.Equal(t, exitUsage, exitCodeFor(parseErr))
	assert.Equal(t, exitUsage, exitCodeFor(errors.Errorf("wrapped: %w", parseErr)))

	assert.Equal(t, exitFileOp, exitCodeFor(&fileOpError{err: errors.Errorf("disk full")}))
	assert.Equal(t, exitFileOp, exitCodeFor(&route.DelegationError{Tool: "tar", ExitCode: 2}))

	assert.Equal(t, exitGeneral, exitCodeFor(errors.Errorf("anything else")))
}

func TestReportEntries(t *testing.T) {
	report := &execute.Report{
		Results: []execute.OpResult{
			{
				Op:     plan.Operation{Source: "a.md", Destination: "b.md", Kind: plan.OpRename},
				Status: execute.StatusApplied,
			},
			{
				Op:     plan.Operation{Destination: "build", Kind: plan.OpMkdir},
				Status: execute.StatusApplied,
			},
			{
				Op:     plan.Operation{Source: "c.md", Kind: plan.OpRemove},
				Status: execute.StatusApplied,
			},
		},
	}

	entries := reportEntries(report)
	require.Len(t, entries, 3)
	assert.Equal(t, route.FileEntry{Path: "a.md", Destination: "b.md", Status: "applied"}, entries[0])
	assert.Equal(t, route.FileEntry{Path: "build", Status: "applied"}, entries[1])
	assert.Equal(t, route.FileEntry{Path: "c.md", Status: "applied"}, entries[2])
}

func TestResultPaths(t *testing.T) {
	report := &execute.Report{
		Results: []execute.OpResult{
			{
				Op:     plan.Operation{Source: "a.md", Destination: "b.md", Kind: plan.OpRename},
				Status: execute.StatusApplied,
			},
			{
				Op:     plan.Operation{Source: "skip.md", Destination: "taken.md", Kind: plan.OpRename},
				Status: execute.StatusConflict,
			},
			{
				Op:     plan.Operation{Source: "gone.md", Kind: plan.OpRemove},
				Status: execute.StatusApplied,
			},
		},
	}

	assert.Equal(t, []string{"b.md", "gone.md"}, resultPaths(report),
		"tools see applied destinations; conflicts are excluded")
}

func TestResolveTransform(t *testing.T) {
	tf, err := resolveTransform(&grammar.ParsedCommand{
		Command: grammar.Command{Kind: grammar.CmdCase, Style: "snake"},
	})
	require.NoError(t, err)
	assert.Equal(t, "my_notes", tf.Apply("MyNotes"))

	tf, err = resolveTransform(&grammar.ParsedCommand{
		Command: grammar.Command{Kind: grammar.CmdChange, Old: "draft", New: "final"},
	})
	require.NoError(t, err)
	assert.Equal(t, "final_v2", tf.Apply("draft_v2"))

	_, err = resolveTransform(&grammar.ParsedCommand{
		Command: grammar.Command{Kind: grammar.CmdRegex, Old: "([a-z", New: "$1"},
	})
	require.Error(t, err, "invalid regex fails before planning")

	tf, err = resolveTransform(&grammar.ParsedCommand{
		Command: grammar.Command{Kind: grammar.CmdMove},
	})
	require.NoError(t, err)
	assert.Nil(t, tf, "relocation commands have no transform")
}
