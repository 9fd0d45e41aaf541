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

// Package route resolves route clauses into side-effect descriptors and
// carries them out: delegating to external tools, redirecting output to a
// file, and selecting a serialization format.
package route

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/smv/pkg/grammar"
)

// Effect is a resolved side-effect descriptor.
type Effect interface {
	isEffect()
}

// DelegateEffect hands the operated file set to an external tool. The tool
// name is not validated locally: an unknown tool fails at invocation time.
type DelegateEffect struct {
	Tool string
	Args []string // user-supplied args, appended after the core-built ones
}

// WriteOutputEffect serializes the file list into a file instead of stdout.
type WriteOutputEffect struct {
	Path string
}

// FormatEffect selects the output serializer.
type FormatEffect struct {
	Kind FormatKind
}

func (DelegateEffect) isEffect()    {}
func (WriteOutputEffect) isEffect() {}
func (FormatEffect) isEffect()      {}

// Resolve maps parsed route clauses to effects. Effects compose: FORMAT and
// INTO together serialize into the file with the chosen format.
func Resolve(routes []grammar.RouteClause) ([]Effect, error) {
	effects := make([]Effect, 0, len(routes))

	for _, r := range routes {
		switch r.Kind {
		case grammar.RouteTo:
			effects = append(effects, DelegateEffect{Tool: r.Tool, Args: r.Args})
		case grammar.RouteInto:
			effects = append(effects, WriteOutputEffect{Path: r.Path})
		case grammar.RouteFormat:
			kind, err := ParseFormat(r.Format)
			if err != nil {
				return nil, err
			}
			effects = append(effects, FormatEffect{Kind: kind})
		default:
			return nil, errors.Errorf("unknown route kind %d", r.Kind)
		}
	}

	return effects, nil
}

// DelegationError surfaces an external tool failure verbatim. There is no
// retry: the collaborator owns its own policy.
type DelegationError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *DelegationError) Error() string {
	if e.Err != nil {
		return "delegating to " + e.Tool + ": " + e.Err.Error()
	}
	return "tool " + e.Tool + " exited with " + strconv.Itoa(e.ExitCode) + ": " + e.Stderr
}

func (e *DelegationError) Unwrap() error { return e.Err }

// Result is what a delegated tool produced. The core treats it opaquely.
type Result struct {
	Stdout   []byte
	ExitCode int
}

// Delegator invokes an external named tool. The core depends only on this
// interface; tests substitute a fake.
type Delegator interface {
	Delegate(ctx context.Context, tool string, args []string) (*Result, error)
}

// ExecDelegator runs tools as subprocesses.
type ExecDelegator struct{}

func (ExecDelegator) Delegate(ctx context.Context, tool string, args []string) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("tool", tool).Strs("args", args).Msg("delegating to external tool")

	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &DelegationError{
				Tool:     tool,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return nil, &DelegationError{Tool: tool, Err: err}
	}

	return &Result{Stdout: stdout.Bytes(), ExitCode: 0}, nil
}
