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

// Package grammar parses the smv command grammar:
//
//	<COMMAND> <PATH> [FILTER]* [ROUTE]* [FLAG]*
//
// Parsing is strictly positional and single-pass. A parse failure touches
// nothing: every error this package returns happens before any filesystem
// access.
package grammar

// 🏷️ CommandKind identifies which command variant was parsed
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdCase                // snake, kebab, title, camel, pascal, lower, upper
	CmdClean               // strip special characters, collapse whitespace
	CmdSplit               // force word-boundary detection, then apply a style
	CmdChange              // literal substring replacement
	CmdRegex               // regexp replacement with capture groups
	CmdMove
	CmdCopy
	CmdRemove
	CmdMkdir
	CmdTouch
	CmdUndo
	CmdHistory
)

// String returns the canonical verb for the command kind
func (k CommandKind) String() string {
	switch k {
	case CmdCase:
		return "case"
	case CmdClean:
		return "clean"
	case CmdSplit:
		return "split"
	case CmdChange:
		return "change"
	case CmdRegex:
		return "regex"
	case CmdMove:
		return "move"
	case CmdCopy:
		return "copy"
	case CmdRemove:
		return "remove"
	case CmdMkdir:
		return "mkdir"
	case CmdTouch:
		return "touch"
	case CmdUndo:
		return "undo"
	case CmdHistory:
		return "history"
	default:
		return "unknown"
	}
}

// 🎯 Command is the single command variant of one invocation
type Command struct {
	Kind CommandKind

	// Style names the case style for CmdCase and CmdSplit
	// (snake, kebab, title, camel, pascal, lower, upper).
	Style string

	// Old and New are the operands of CmdChange and CmdRegex.
	Old string
	New string

	// Removal marks a CmdChange with an empty replacement. It only affects
	// reporting, never the substitution itself.
	Removal bool

	// Destination is the explicit destination of CmdMove and CmdCopy.
	Destination string

	// Targets are the literal targets of CmdMkdir and CmdTouch.
	Targets []string
}

// Comparator is the filter comparison operator
type Comparator rune

const (
	CompEquals  Comparator = ':'
	CompGreater Comparator = '>'
	CompLess    Comparator = '<'
)

// Filter keywords accepted by the grammar.
const (
	KeywordName     = "NAME"
	KeywordType     = "TYPE"
	KeywordExt      = "EXT"
	KeywordSize     = "SIZE"
	KeywordDepth    = "DEPTH"
	KeywordModified = "MODIFIED"
	KeywordAccessed = "ACCESSED"
	KeywordFor      = "FOR"
)

// 🔍 FilterClause is one keyword/comparator/value triple. Semantic groups
// expand into plain clauses at parse time, so a clause from a group is
// indistinguishable from a literal one.
type FilterClause struct {
	Keyword    string
	Comparator Comparator
	Value      string
}

// RouteKind identifies a route clause variant
type RouteKind int

const (
	RouteTo RouteKind = iota + 1
	RouteInto
	RouteFormat
)

// 🚏 RouteClause is one parsed route
type RouteClause struct {
	Kind RouteKind

	// Tool and Args are set for RouteTo. Args keep their command-line order.
	Tool string
	Args []string

	// Path is set for RouteInto.
	Path string

	// Format is set for RouteFormat, normalized to json/csv/yaml/text.
	Format string
}

// 🚩 FlagSet holds the independent execution flags
type FlagSet struct {
	Recursive   bool // -r
	Preview     bool // -p
	Force       bool // -f
	Interactive bool // -i
	TUI         bool // -t
	Undo        bool // -u
}

// ParsedCommand is the fully parsed invocation
type ParsedCommand struct {
	Command Command
	Path    string
	Filters []FilterClause
	Routes  []RouteClause
	Flags   FlagSet
}
