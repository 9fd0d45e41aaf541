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

// Package plan turns a filtered snapshot plus a command into planned
// operations. Planning is pure: it reads the snapshot and the existence
// oracle taken at plan time, and performs no other I/O. Nothing mutates
// until an operation is Ready or OverwriteAllowed.
package plan

import (
	"path/filepath"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/smv/pkg/grammar"
	"github.com/walteh/smv/pkg/scan"
	"github.com/walteh/smv/pkg/transform"
)

// OpKind is the planned mutation kind.
type OpKind int

const (
	OpRename OpKind = iota + 1
	OpMove
	OpCopy
	OpRemove
	OpMkdir
	OpTouch
)

func (k OpKind) String() string {
	switch k {
	case OpRename:
		return "rename"
	case OpMove:
		return "move"
	case OpCopy:
		return "copy"
	case OpRemove:
		return "remove"
	case OpMkdir:
		return "mkdir"
	case OpTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// OpState is the conflict state of a planned operation.
type OpState int

const (
	StateReady OpState = iota + 1
	StateNoOp
	StateConflict
	StateOverwriteAllowed
)

func (s OpState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateNoOp:
		return "no-op"
	case StateConflict:
		return "conflict"
	case StateOverwriteAllowed:
		return "overwrite"
	default:
		return "unknown"
	}
}

// Operation is one computed, not-yet-applied mutation.
type Operation struct {
	Source      string
	Destination string // empty for remove
	Kind        OpKind
	State       OpState
}

// Exists is the existence oracle sampled at plan time; tests substitute a
// map lookup.
type Exists func(path string) bool

// Planner computes operations against one snapshot.
type Planner struct {
	exists Exists
}

func NewPlanner(exists Exists) *Planner {
	return &Planner{exists: exists}
}

// Build dispatches on the parsed command. The transform argument is required
// for transform commands and ignored otherwise.
func (p *Planner) Build(cmd *grammar.ParsedCommand, files []scan.FileMeta, tf transform.Transform) ([]Operation, error) {
	switch cmd.Command.Kind {
	case grammar.CmdCase, grammar.CmdClean, grammar.CmdSplit, grammar.CmdChange, grammar.CmdRegex:
		if tf == nil {
			return nil, errors.Errorf("transform command %s has no transform", cmd.Command.Kind)
		}
		return p.planTransform(files, tf, cmd.Flags.Force), nil

	case grammar.CmdMove:
		return p.planRelocate(OpMove, files, cmd.Command.Destination, cmd.Flags.Force), nil

	case grammar.CmdCopy:
		return p.planRelocate(OpCopy, files, cmd.Command.Destination, cmd.Flags.Force), nil

	case grammar.CmdRemove:
		return p.planRemove(files), nil

	case grammar.CmdMkdir:
		return p.planCreate(OpMkdir, cmd.Command.Targets), nil

	case grammar.CmdTouch:
		return p.planCreate(OpTouch, cmd.Command.Targets), nil

	default:
		return nil, errors.Errorf("command %s does not plan operations", cmd.Command.Kind)
	}
}

// planTransform renames each file in place to its transformed name.
func (p *Planner) planTransform(files []scan.FileMeta, tf transform.Transform, force bool) []Operation {
	ops := make([]Operation, 0, len(files))
	claimed := make(map[string]bool)

	for _, f := range files {
		newName := transform.ApplyToFileName(f.Name, tf)
		dest := filepath.Join(filepath.Dir(f.Path), newName)

		op := Operation{Source: f.Path, Destination: dest, Kind: OpRename}
		op.State = p.resolveState(op, force, claimed)
		if op.State != StateNoOp {
			claimed[dest] = true
		}
		ops = append(ops, op)
	}

	return ops
}

// planRelocate moves or copies each file into the destination directory.
func (p *Planner) planRelocate(kind OpKind, files []scan.FileMeta, destDir string, force bool) []Operation {
	ops := make([]Operation, 0, len(files))
	claimed := make(map[string]bool)

	for _, f := range files {
		dest := filepath.Join(destDir, f.Name)

		op := Operation{Source: f.Path, Destination: dest, Kind: kind}
		op.State = p.resolveState(op, force, claimed)
		if op.State != StateNoOp {
			claimed[dest] = true
		}
		ops = append(ops, op)
	}

	return ops
}

func (p *Planner) planRemove(files []scan.FileMeta) []Operation {
	ops := make([]Operation, 0, len(files))
	for _, f := range files {
		ops = append(ops, Operation{Source: f.Path, Kind: OpRemove, State: StateReady})
	}
	return ops
}

// planCreate plans mkdir/touch from literal targets rather than the scan.
func (p *Planner) planCreate(kind OpKind, targets []string) []Operation {
	ops := make([]Operation, 0, len(targets))
	for _, target := range targets {
		op := Operation{Destination: target, Kind: kind}
		if p.exists(target) {
			// Creating something that already exists changes nothing.
			op.State = StateNoOp
		} else {
			op.State = StateReady
		}
		ops = append(ops, op)
	}
	return ops
}

// resolveState applies the conflict rule: destination == source is a NoOp;
// an existing, different destination conflicts unless force allows the
// overwrite. Two operations claiming the same destination within one batch
// always conflict — force cannot make that safe.
func (p *Planner) resolveState(op Operation, force bool, claimed map[string]bool) OpState {
	if op.Destination == op.Source {
		return StateNoOp
	}
	if claimed[op.Destination] {
		return StateConflict
	}
	if p.exists(op.Destination) {
		if force {
			return StateOverwriteAllowed
		}
		return StateConflict
	}
	return StateReady
}
