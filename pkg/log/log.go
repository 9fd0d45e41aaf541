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

// Package log renders execution reports and history listings for humans.
// Structured logging stays on zerolog; this package owns the console lines
// the user actually reads.
package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/walteh/smv/pkg/execute"
	"github.com/walteh/smv/pkg/history"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 35 // Base width for source path
)

// 🖥️ Renderer writes human-readable operation output to a console.
type Renderer struct {
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a renderer on the given writer (normally stdout).
func New(console io.Writer) *Renderer {
	return &Renderer{console: console}
}

// 📝 formatResult formats one operation outcome for display.
func (r *Renderer) formatResult(res execute.OpResult) string {
	var symbol rune
	var symbolColor color.Attribute
	switch res.Status {
	case execute.StatusApplied:
		symbol = '✓'
		symbolColor = color.FgGreen
	case execute.StatusPreviewed:
		symbol = '→'
		symbolColor = color.FgCyan
	case execute.StatusSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	case execute.StatusConflict:
		symbol = '!'
		symbolColor = color.FgRed
	case execute.StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '?'
		symbolColor = color.FgWhite
	}

	subject := res.Op.Source
	if subject == "" {
		subject = res.Op.Destination
	}

	line := fmt.Sprintf("%s%s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, subject))

	if res.Op.Destination != "" && res.Op.Destination != subject {
		line += " " + color.New(color.Faint).Sprint("→ "+res.Op.Destination)
	}
	line += " " + color.New(color.Faint).Sprint(res.Status.String())
	if res.Err != nil {
		line += " " + color.New(color.FgRed).Sprint(res.Err.Error())
	}
	return line
}

// 📝 RenderReport prints per-operation lines followed by a summary.
func (r *Renderer) RenderReport(report *execute.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, res := range report.Results {
		fmt.Fprintln(r.console, r.formatResult(res))
	}
	fmt.Fprintln(r.console)

	switch {
	case report.Failed > 0:
		pterm.Error.WithWriter(r.console).Printfln("%d applied, %d failed, %d conflicts, %d skipped",
			report.Applied, report.Failed, report.Conflicts, report.Skipped)
	case report.Conflicts > 0:
		pterm.Warning.WithWriter(r.console).Printfln("%d applied, %d conflicts, %d skipped",
			report.Applied, report.Conflicts, report.Skipped)
	case report.Previewed > 0:
		pterm.Info.WithWriter(r.console).Printfln("%d operations previewed, nothing changed",
			report.Previewed)
	default:
		pterm.Success.WithWriter(r.console).Printfln("%d applied, %d skipped",
			report.Applied, report.Skipped)
	}
}

// 📝 RenderUndo announces a reversed history entry.
func (r *Renderer) RenderUndo(entry *history.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(entry.Ops) - 1; i >= 0; i-- {
		op := entry.Ops[i]
		subject := op.Source
		if subject == "" {
			subject = op.Destination
		}
		fmt.Fprintf(r.console, "%s%s %s %s\n",
			fmt.Sprintf("%*s", fileIndent, ""),
			color.New(color.FgGreen).Sprint("↩"),
			fmt.Sprintf("%-*s", nameWidth, subject),
			color.New(color.Faint).Sprint(op.Kind))
	}
	fmt.Fprintln(r.console)
	pterm.Success.WithWriter(r.console).Printfln("undid %d operations (entry %d)", len(entry.Ops), entry.Seq)
}

// 📝 RenderHistory lists recorded entries, oldest first.
func (r *Renderer) RenderHistory(entries []history.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(entries) == 0 {
		pterm.Info.WithWriter(r.console).Println("history is empty")
		return
	}

	for _, e := range entries {
		marker := color.New(color.FgCyan).Sprint("•")
		suffix := ""
		if e.Undone {
			marker = color.New(color.Faint).Sprint("•")
			suffix = color.New(color.Faint).Sprint(" (undone)")
		}
		fmt.Fprintf(r.console, "%s %s %d operations, %s%s\n",
			marker,
			color.New(color.Bold).Sprintf("#%d", e.Seq),
			len(e.Ops),
			e.Time.Format("2006-01-02 15:04:05"),
			suffix)
		for _, op := range e.Ops {
			subject := op.Source
			if subject == "" {
				subject = op.Destination
			}
			line := fmt.Sprintf("%*s%s %s", fileIndent, "", op.Kind, subject)
			if op.Destination != "" && op.Destination != subject {
				line += color.New(color.Faint).Sprint(" → " + op.Destination)
			}
			fmt.Fprintln(r.console, line)
		}
	}
}

// 📝 Error prints a failure the user must act on.
func (r *Renderer) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pterm.Error.WithWriter(r.console).Println(msg)
}
