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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/smv/pkg/config"
	"github.com/walteh/smv/pkg/execute"
	"github.com/walteh/smv/pkg/filter"
	"github.com/walteh/smv/pkg/grammar"
	"github.com/walteh/smv/pkg/history"
	"github.com/walteh/smv/pkg/log"
	"github.com/walteh/smv/pkg/plan"
	"github.com/walteh/smv/pkg/route"
	"github.com/walteh/smv/pkg/scan"
	"github.com/walteh/smv/pkg/transform"
)

// Exit codes. Parse and compile failures are usage errors; anything that
// touched the filesystem and failed is a file-operation error.
const (
	exitGeneral = 1
	exitUsage   = 2
	exitFileOp  = 3
)

// fileOpError tags failures that happened while mutating the filesystem so
// the exit-code mapping can tell them apart from everything else.
type fileOpError struct{ err error }

func (e *fileOpError) Error() string { return e.err.Error() }
func (e *fileOpError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var parseErr *grammar.ParseError
	var compileErr *filter.CompileError
	if errors.As(err, &parseErr) || errors.As(err, &compileErr) {
		return exitUsage
	}

	var opErr *fileOpError
	var delErr *route.DelegationError
	if errors.As(err, &opErr) || errors.As(err, &delErr) {
		return exitFileOp
	}

	return exitGeneral
}

// run executes one parsed command line end to end.
func run(ctx context.Context, args []string, configFile string) error {
	logger := zerolog.Ctx(ctx)

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return err
	}

	groups, err := cfg.GroupRegistry()
	if err != nil {
		return err
	}

	parsed, err := grammar.NewParser(groups).ParseTokens(args)
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.BackupRoot, cfg.MaxHistory)
	if err != nil {
		return err
	}
	engine := execute.NewEngine(store)
	renderer := log.New(os.Stdout)

	if parsed.Flags.Interactive || parsed.Flags.TUI {
		logger.Debug().Msg("interactive and tui flags are accepted but handled elsewhere")
	}

	switch {
	case parsed.Command.Kind == grammar.CmdUndo || parsed.Flags.Undo:
		entry, err := engine.Undo(ctx)
		if err != nil {
			return err
		}
		renderer.RenderUndo(entry)
		return nil

	case parsed.Command.Kind == grammar.CmdHistory:
		return runHistory(parsed, store, renderer)
	}

	files, err := selectFiles(ctx, parsed, cfg)
	if err != nil {
		return err
	}

	tf, err := resolveTransform(parsed)
	if err != nil {
		return err
	}

	planner := plan.NewPlanner(func(path string) bool {
		_, err := os.Lstat(path)
		return err == nil
	})
	ops, err := planner.Build(parsed, files, tf)
	if err != nil {
		return err
	}

	var report *execute.Report
	var execErr error
	if parsed.Flags.Preview {
		report = engine.Preview(ops)
	} else {
		report, execErr = engine.Execute(ctx, ops)
	}
	renderer.RenderReport(report)

	if err := applyRoutes(ctx, parsed, report); err != nil {
		return err
	}

	if execErr != nil {
		return &fileOpError{err: execErr}
	}
	return nil
}

// selectFiles scans and filters the target path for commands that operate on
// existing files. mkdir and touch plan from literal targets instead.
func selectFiles(ctx context.Context, parsed *grammar.ParsedCommand, cfg *config.Settings) ([]scan.FileMeta, error) {
	switch parsed.Command.Kind {
	case grammar.CmdMkdir, grammar.CmdTouch:
		return nil, nil
	}

	files, err := scan.Snapshot(ctx, parsed.Path, scan.Options{
		Recursive: parsed.Flags.Recursive,
		Workers:   cfg.ScanWorkers,
	})
	if err != nil {
		return nil, err
	}

	pred, err := filter.Compile(parsed.Filters)
	if err != nil {
		return nil, err
	}
	return filter.Select(files, pred), nil
}

// resolveTransform maps the parsed command to a name transform, or nil for
// commands that do not rename.
func resolveTransform(parsed *grammar.ParsedCommand) (transform.Transform, error) {
	registry := transform.NewRegistry(nil)

	switch parsed.Command.Kind {
	case grammar.CmdCase, grammar.CmdSplit:
		tf, ok := registry.Get(parsed.Command.Style)
		if !ok {
			return nil, errors.Errorf("unknown style %q", parsed.Command.Style)
		}
		return tf, nil

	case grammar.CmdClean:
		tf, _ := registry.Get("clean")
		return tf, nil

	case grammar.CmdChange:
		return transform.NewChange(parsed.Command.Old, parsed.Command.New), nil

	case grammar.CmdRegex:
		return transform.NewRegex(parsed.Command.Old, parsed.Command.New)

	default:
		return nil, nil
	}
}

// applyRoutes carries out the parsed route clauses over the report's file
// list: serializing, writing to a file, and delegating to external tools.
func applyRoutes(ctx context.Context, parsed *grammar.ParsedCommand, report *execute.Report) error {
	effects, err := route.Resolve(parsed.Routes)
	if err != nil {
		return err
	}
	if len(effects) == 0 {
		return nil
	}

	format := route.FormatText
	explicitFormat := false
	var outPath string
	var delegates []route.DelegateEffect

	for _, eff := range effects {
		switch e := eff.(type) {
		case route.FormatEffect:
			format = e.Kind
			explicitFormat = true
		case route.WriteOutputEffect:
			outPath = e.Path
		case route.DelegateEffect:
			delegates = append(delegates, e)
		}
	}

	entries := reportEntries(report)

	if outPath != "" || explicitFormat {
		data, err := route.Serialize(format, entries)
		if err != nil {
			return err
		}
		if outPath != "" {
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return &fileOpError{err: errors.Errorf("writing output to %s: %w", outPath, err)}
			}
		} else {
			os.Stdout.Write(data)
		}
	}

	delegator := route.ExecDelegator{}
	for _, d := range delegates {
		paths := resultPaths(report)
		result, err := delegator.Delegate(ctx, d.Tool, append(paths, d.Args...))
		if err != nil {
			return err
		}
		os.Stdout.Write(result.Stdout)
	}

	return nil
}

// reportEntries flattens the report into serializable rows.
func reportEntries(report *execute.Report) []route.FileEntry {
	entries := make([]route.FileEntry, 0, len(report.Results))
	for _, res := range report.Results {
		entry := route.FileEntry{Path: res.Op.Source, Status: res.Status.String()}
		if entry.Path == "" {
			entry.Path = res.Op.Destination
		} else if res.Op.Destination != res.Op.Source {
			entry.Destination = res.Op.Destination
		}
		entries = append(entries, entry)
	}
	return entries
}

// resultPaths returns the paths an external tool should see: where each
// successfully operated file lives now.
func resultPaths(report *execute.Report) []string {
	paths := make([]string, 0, len(report.Results))
	for _, res := range report.Results {
		if res.Status != execute.StatusApplied && res.Status != execute.StatusPreviewed {
			continue
		}
		path := res.Op.Destination
		if path == "" || res.Op.Kind == plan.OpRemove {
			path = res.Op.Source
		}
		paths = append(paths, path)
	}
	return paths
}

// runHistory lists recorded entries, honoring FORMAT and INTO routes.
func runHistory(parsed *grammar.ParsedCommand, store *history.Store, renderer *log.Renderer) error {
	entries, err := store.Entries()
	if err != nil {
		return err
	}

	effects, err := route.Resolve(parsed.Routes)
	if err != nil {
		return err
	}

	format := route.FormatText
	explicitFormat := false
	var outPath string
	for _, eff := range effects {
		switch e := eff.(type) {
		case route.FormatEffect:
			format = e.Kind
			explicitFormat = true
		case route.WriteOutputEffect:
			outPath = e.Path
		}
	}

	if !explicitFormat && outPath == "" {
		renderer.RenderHistory(entries)
		return nil
	}

	var rows []route.FileEntry
	for _, e := range entries {
		for _, op := range e.Ops {
			row := route.FileEntry{Path: op.Source, Status: op.Kind}
			if row.Path == "" {
				row.Path = op.Destination
			} else if op.Destination != "" && op.Destination != op.Source {
				row.Destination = op.Destination
			}
			if e.Undone {
				row.Status += " (undone)"
			}
			rows = append(rows, row)
		}
	}

	data, err := route.Serialize(format, rows)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return &fileOpError{err: errors.Errorf("writing output to %s: %w", outPath, err)}
		}
		return nil
	}
	os.Stdout.Write(data)
	return nil
}
