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

package grammar

import (
	"strings"
)

var caseStyles = map[string]bool{
	"snake":  true,
	"kebab":  true,
	"title":  true,
	"camel":  true,
	"pascal": true,
	"lower":  true,
	"upper":  true,
}

// split re-tokenizes the name, so it only accepts styles with a joiner.
var splitStyles = map[string]bool{
	"snake":  true,
	"kebab":  true,
	"title":  true,
	"camel":  true,
	"pascal": true,
}

var filterKeywords = map[string]bool{
	KeywordName:     true,
	KeywordType:     true,
	KeywordExt:      true,
	KeywordSize:     true,
	KeywordDepth:    true,
	KeywordModified: true,
	KeywordAccessed: true,
	KeywordFor:      true,
}

var routeKeywords = map[string]bool{
	"TO":     true,
	"INTO":   true,
	"FORMAT": true,
}

// 🧩 Parser turns token streams into ParsedCommands. Semantic groups expand
// through the registry exactly once, during the parse.
type Parser struct {
	groups *GroupRegistry
}

// NewParser creates a parser. A nil registry means built-in groups only.
func NewParser(groups *GroupRegistry) *Parser {
	if groups == nil {
		groups = NewGroupRegistry()
	}
	return &Parser{groups: groups}
}

// Parse tokenizes and parses a raw command line.
func (p *Parser) Parse(raw string) (*ParsedCommand, error) {
	tokens, err := Tokenize(raw)
	if err != nil {
		return nil, err
	}
	return p.ParseTokens(tokens)
}

// parse stages, in grammar order
const (
	stagePositional = iota
	stageFilters
	stageRoutes
	stageFlags
)

// ParseTokens parses pre-split tokens (e.g. argv) in a single pass.
func (p *Parser) ParseTokens(tokens []string) (*ParsedCommand, error) {
	if len(tokens) == 0 {
		return nil, &ParseError{Kind: ErrUnknownCommand, Raw: "", Reason: "empty command"}
	}

	parsed := &ParsedCommand{}

	i, err := parseVerb(tokens, &parsed.Command)
	if err != nil {
		return nil, err
	}

	stage := stagePositional
	var positionals []string

	for ; i < len(tokens); i++ {
		tok := tokens[i]

		switch {
		case isFlagToken(tok):
			if err := parseFlags(tok, &parsed.Flags); err != nil {
				return nil, err
			}
			stage = stageFlags

		case keywordOf(tok, routeKeywords):
			if stage > stageRoutes {
				return nil, &ParseError{Kind: ErrUnexpectedToken, Raw: tok, Reason: "routes must precede flags"}
			}
			route, err := parseRouteClause(tok)
			if err != nil {
				return nil, err
			}
			parsed.Routes = append(parsed.Routes, route)
			stage = stageRoutes

		case keywordOf(tok, filterKeywords):
			if stage > stageFilters {
				return nil, &ParseError{Kind: ErrUnexpectedToken, Raw: tok, Reason: "filters must precede routes and flags"}
			}
			clause, err := ParseFilterClause(tok)
			if err != nil {
				return nil, err
			}
			if clause.Keyword == KeywordFor {
				expanded, ok := p.groups.Expand(clause.Value)
				if !ok {
					return nil, &ParseError{Kind: ErrMalformedFilter, Keyword: KeywordFor, Raw: tok, Reason: "unknown semantic group"}
				}
				parsed.Filters = append(parsed.Filters, expanded...)
			} else {
				parsed.Filters = append(parsed.Filters, clause)
			}
			stage = stageFilters

		default:
			if stage > stagePositional {
				return nil, &ParseError{Kind: ErrUnexpectedToken, Raw: tok, Reason: "paths must precede filters, routes, and flags"}
			}
			positionals = append(positionals, tok)
		}
	}

	if err := assignPositionals(parsed, positionals); err != nil {
		return nil, err
	}

	return parsed, nil
}

// parseVerb consumes the command verb and its operands, returning the index
// of the first unconsumed token.
func parseVerb(tokens []string, cmd *Command) (int, error) {
	verb := strings.ToLower(tokens[0])

	switch verb {
	case "snake", "kebab", "title", "camel", "pascal", "lower", "upper":
		cmd.Kind = CmdCase
		cmd.Style = verb
		return 1, nil

	case "clean":
		cmd.Kind = CmdClean
		return 1, nil

	case "split":
		if len(tokens) < 2 {
			return 0, &ParseError{Kind: ErrMalformedCommand, Raw: tokens[0], Reason: "split requires a target style"}
		}
		style := strings.ToLower(tokens[1])
		if !splitStyles[style] {
			return 0, &ParseError{Kind: ErrMalformedCommand, Raw: tokens[1], Reason: "split target must be one of snake, kebab, title, camel, pascal"}
		}
		cmd.Kind = CmdSplit
		cmd.Style = style
		return 2, nil

	case "change", "regex":
		// CHANGE "old" INTO "new" / REGEX "pat" INTO "rep"
		if len(tokens) < 4 || tokens[2] != "INTO" {
			return 0, &ParseError{Kind: ErrMalformedCommand, Raw: tokens[0], Reason: verb + ` requires the form: ` + verb + ` "old" INTO "new"`}
		}
		if verb == "change" {
			cmd.Kind = CmdChange
			if tokens[1] == "" {
				return 0, &ParseError{Kind: ErrMalformedCommand, Raw: tokens[0], Reason: "change requires a non-empty search string"}
			}
			cmd.Removal = tokens[3] == ""
		} else {
			cmd.Kind = CmdRegex
			if tokens[1] == "" {
				return 0, &ParseError{Kind: ErrMalformedCommand, Raw: tokens[0], Reason: "regex requires a non-empty pattern"}
			}
		}
		cmd.Old = tokens[1]
		cmd.New = tokens[3]
		return 4, nil

	case "move", "mv":
		cmd.Kind = CmdMove
		return 1, nil
	case "copy", "cp":
		cmd.Kind = CmdCopy
		return 1, nil
	case "remove", "rm":
		cmd.Kind = CmdRemove
		return 1, nil
	case "mkdir":
		cmd.Kind = CmdMkdir
		return 1, nil
	case "touch":
		cmd.Kind = CmdTouch
		return 1, nil
	case "undo":
		cmd.Kind = CmdUndo
		return 1, nil
	case "history":
		cmd.Kind = CmdHistory
		return 1, nil

	default:
		return 0, &ParseError{Kind: ErrUnknownCommand, Raw: tokens[0]}
	}
}

// assignPositionals distributes path-like tokens by command kind. PATH
// defaults to the current directory when omitted.
func assignPositionals(parsed *ParsedCommand, positionals []string) error {
	parsed.Path = "."

	switch parsed.Command.Kind {
	case CmdMove, CmdCopy:
		switch len(positionals) {
		case 0:
			return &ParseError{Kind: ErrMalformedCommand, Raw: parsed.Command.Kind.String(), Reason: "destination is required"}
		case 1:
			parsed.Command.Destination = positionals[0]
		case 2:
			parsed.Path = positionals[0]
			parsed.Command.Destination = positionals[1]
		default:
			return &ParseError{Kind: ErrUnexpectedToken, Raw: positionals[2], Reason: "too many paths"}
		}

	case CmdMkdir, CmdTouch:
		if len(positionals) == 0 {
			return &ParseError{Kind: ErrMalformedCommand, Raw: parsed.Command.Kind.String(), Reason: "at least one target is required"}
		}
		parsed.Command.Targets = positionals

	case CmdUndo, CmdHistory:
		if len(positionals) > 0 {
			return &ParseError{Kind: ErrUnexpectedToken, Raw: positionals[0], Reason: parsed.Command.Kind.String() + " takes no path"}
		}

	default:
		switch len(positionals) {
		case 0:
		case 1:
			parsed.Path = positionals[0]
		default:
			return &ParseError{Kind: ErrUnexpectedToken, Raw: positionals[1], Reason: "too many paths"}
		}
	}

	return nil
}

// isFlagToken reports whether a token is a stackable short-flag group.
func isFlagToken(tok string) bool {
	return len(tok) > 1 && tok[0] == '-' && tok[1] != '-'
}

// keywordOf reports whether the token starts with one of the given keywords
// followed by a comparator.
func keywordOf(tok string, keywords map[string]bool) bool {
	idx := strings.IndexAny(tok, ":<>")
	if idx <= 0 {
		return false
	}
	return keywords[tok[:idx]]
}

// ParseFilterClause parses a single KEYWORD:value / KEYWORD>value /
// KEYWORD<value token. Value syntax (size units, dates) is checked later, at
// predicate compile time; this validates shape only.
func ParseFilterClause(tok string) (FilterClause, error) {
	idx := strings.IndexAny(tok, ":<>")
	if idx <= 0 || idx == len(tok)-1 {
		return FilterClause{}, &ParseError{Kind: ErrMalformedFilter, Raw: tok, Reason: "expected KEYWORD:value, KEYWORD>value, or KEYWORD<value"}
	}

	keyword := tok[:idx]
	comp := Comparator(tok[idx])
	value := tok[idx+1:]

	if !filterKeywords[keyword] {
		return FilterClause{}, &ParseError{Kind: ErrMalformedFilter, Keyword: keyword, Raw: tok, Reason: "unknown filter keyword"}
	}

	switch keyword {
	case KeywordName, KeywordExt, KeywordFor:
		if comp != CompEquals {
			return FilterClause{}, &ParseError{Kind: ErrMalformedFilter, Keyword: keyword, Raw: tok, Reason: "only ':' is valid for " + keyword}
		}

	case KeywordType:
		if comp != CompEquals {
			return FilterClause{}, &ParseError{Kind: ErrMalformedFilter, Keyword: keyword, Raw: tok, Reason: "only ':' is valid for TYPE"}
		}
		normalized, ok := normalizeType(value)
		if !ok {
			return FilterClause{}, &ParseError{Kind: ErrMalformedFilter, Keyword: keyword, Raw: tok, Reason: "type must be file, folder, symlink, or other"}
		}
		value = normalized

	case KeywordSize, KeywordDepth, KeywordModified, KeywordAccessed:
		if comp != CompGreater && comp != CompLess {
			return FilterClause{}, &ParseError{Kind: ErrMalformedFilter, Keyword: keyword, Raw: tok, Reason: keyword + " requires '>' or '<'"}
		}
	}

	return FilterClause{Keyword: keyword, Comparator: comp, Value: value}, nil
}

func normalizeType(value string) (string, bool) {
	switch strings.ToLower(value) {
	case "file":
		return "file", true
	case "folder", "dir", "directory":
		return "folder", true
	case "symlink", "link":
		return "symlink", true
	case "other":
		return "other", true
	default:
		return "", false
	}
}

// parseRouteClause parses TO:tool[:arg1,arg2], INTO:path, FORMAT:kind.
func parseRouteClause(tok string) (RouteClause, error) {
	idx := strings.Index(tok, ":")
	if idx <= 0 {
		return RouteClause{}, &ParseError{Kind: ErrMalformedRoute, Raw: tok, Reason: "expected KEYWORD:value"}
	}

	keyword := tok[:idx]
	value := tok[idx+1:]
	if value == "" {
		return RouteClause{}, &ParseError{Kind: ErrMalformedRoute, Raw: tok, Reason: keyword + " requires a value"}
	}

	switch keyword {
	case "TO":
		route := RouteClause{Kind: RouteTo, Tool: value}
		if j := strings.Index(value, ":"); j >= 0 {
			route.Tool = value[:j]
			for _, arg := range strings.Split(value[j+1:], ",") {
				arg = strings.TrimSpace(arg)
				if arg != "" {
					route.Args = append(route.Args, arg)
				}
			}
		}
		if route.Tool == "" {
			return RouteClause{}, &ParseError{Kind: ErrMalformedRoute, Raw: tok, Reason: "tool name is required"}
		}
		return route, nil

	case "INTO":
		return RouteClause{Kind: RouteInto, Path: value}, nil

	case "FORMAT":
		switch strings.ToLower(value) {
		case "json":
			return RouteClause{Kind: RouteFormat, Format: "json"}, nil
		case "csv":
			return RouteClause{Kind: RouteFormat, Format: "csv"}, nil
		case "yaml", "yml":
			return RouteClause{Kind: RouteFormat, Format: "yaml"}, nil
		case "text", "txt":
			return RouteClause{Kind: RouteFormat, Format: "text"}, nil
		default:
			return RouteClause{}, &ParseError{Kind: ErrMalformedRoute, Raw: tok, Reason: "format must be json, csv, yaml, or text"}
		}

	default:
		return RouteClause{}, &ParseError{Kind: ErrMalformedRoute, Raw: tok, Reason: "unknown route keyword"}
	}
}

// parseFlags applies one stackable flag group (-rpf) to the set.
func parseFlags(tok string, flags *FlagSet) error {
	for _, c := range tok[1:] {
		switch c {
		case 'r':
			flags.Recursive = true
		case 'p':
			flags.Preview = true
		case 'f':
			flags.Force = true
		case 'i':
			flags.Interactive = true
		case 't':
			flags.TUI = true
		case 'u':
			flags.Undo = true
		default:
			return &ParseError{Kind: ErrUnknownFlag, Keyword: string(c), Raw: tok}
		}
	}
	return nil
}
