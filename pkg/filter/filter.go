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

// Package filter compiles filter clauses into a pure predicate over file
// metadata. Invalid literals fail compilation before any file is touched;
// they never silently evaluate false.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/walteh/smv/pkg/grammar"
	"github.com/walteh/smv/pkg/scan"
)

// Predicate decides whether a snapshot entry is selected. It is pure and
// deterministic for a fixed clause set.
type Predicate func(scan.FileMeta) bool

// CompileError reports a bad filter literal.
type CompileError struct {
	Keyword string
	Value   string
	Reason  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid %s filter value %q: %s", e.Keyword, e.Value, e.Reason)
}

// Compile builds one predicate from all clauses. Equality clauses that repeat
// a keyword (NAME, TYPE, EXT) select the union within that keyword — this is
// what lets a semantic group match any of its extensions — while ordered
// comparisons always intersect. Keywords combine with AND.
func Compile(clauses []grammar.FilterClause) (Predicate, error) {
	var ands []Predicate
	unions := make(map[string][]Predicate)

	for _, clause := range clauses {
		p, err := compileClause(clause)
		if err != nil {
			return nil, err
		}

		switch clause.Keyword {
		case grammar.KeywordName, grammar.KeywordType, grammar.KeywordExt:
			unions[clause.Keyword] = append(unions[clause.Keyword], p)
		default:
			ands = append(ands, p)
		}
	}

	for _, keyword := range []string{grammar.KeywordName, grammar.KeywordType, grammar.KeywordExt} {
		if ps := unions[keyword]; len(ps) > 0 {
			ands = append(ands, anyOf(ps))
		}
	}

	return func(meta scan.FileMeta) bool {
		for _, p := range ands {
			if !p(meta) {
				return false
			}
		}
		return true
	}, nil
}

// Select applies a predicate to a snapshot.
func Select(metas []scan.FileMeta, pred Predicate) []scan.FileMeta {
	var out []scan.FileMeta
	for _, m := range metas {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

func compileClause(clause grammar.FilterClause) (Predicate, error) {
	switch clause.Keyword {
	case grammar.KeywordName:
		return compileName(clause.Value)

	case grammar.KeywordType:
		fileType, ok := scan.ParseFileType(clause.Value)
		if !ok {
			return nil, &CompileError{Keyword: clause.Keyword, Value: clause.Value, Reason: "unknown file type"}
		}
		return func(meta scan.FileMeta) bool { return meta.Type == fileType }, nil

	case grammar.KeywordExt:
		ext := strings.TrimPrefix(clause.Value, ".")
		if ext == "" {
			return nil, &CompileError{Keyword: clause.Keyword, Value: clause.Value, Reason: "extension is empty"}
		}
		suffix := "." + ext
		return func(meta scan.FileMeta) bool { return strings.HasSuffix(meta.Name, suffix) }, nil

	case grammar.KeywordSize:
		size, err := ParseSize(clause.Value)
		if err != nil {
			return nil, &CompileError{Keyword: clause.Keyword, Value: clause.Value, Reason: err.Error()}
		}
		return compareInt64(clause.Comparator, func(meta scan.FileMeta) int64 { return meta.Size }, size), nil

	case grammar.KeywordDepth:
		depth, err := parseDepth(clause.Value)
		if err != nil {
			return nil, &CompileError{Keyword: clause.Keyword, Value: clause.Value, Reason: err.Error()}
		}
		return compareInt64(clause.Comparator, func(meta scan.FileMeta) int64 { return int64(meta.Depth) }, depth), nil

	case grammar.KeywordModified:
		return compileDate(clause, func(meta scan.FileMeta) time.Time { return meta.ModTime })

	case grammar.KeywordAccessed:
		return compileDate(clause, func(meta scan.FileMeta) time.Time { return meta.AccessTime })

	default:
		return nil, &CompileError{Keyword: clause.Keyword, Value: clause.Value, Reason: "unsupported keyword"}
	}
}

// compileName picks substring matching unless the value carries glob meta
// characters; prefix* and *suffix shapes fall out of the glob path.
func compileName(value string) (Predicate, error) {
	if value == "" {
		return nil, &CompileError{Keyword: grammar.KeywordName, Value: value, Reason: "name pattern is empty"}
	}

	if strings.ContainsAny(value, "*?[{") {
		if !doublestar.ValidatePattern(value) {
			return nil, &CompileError{Keyword: grammar.KeywordName, Value: value, Reason: "invalid glob pattern"}
		}
		return func(meta scan.FileMeta) bool {
			ok, err := doublestar.Match(value, meta.Name)
			return err == nil && ok
		}, nil
	}

	return func(meta scan.FileMeta) bool { return strings.Contains(meta.Name, value) }, nil
}

func compileDate(clause grammar.FilterClause, field func(scan.FileMeta) time.Time) (Predicate, error) {
	day, err := ParseDate(clause.Value)
	if err != nil {
		return nil, &CompileError{Keyword: clause.Keyword, Value: clause.Value, Reason: err.Error()}
	}

	if clause.Comparator == grammar.CompGreater {
		return func(meta scan.FileMeta) bool { return truncateDay(field(meta)).After(day) }, nil
	}
	return func(meta scan.FileMeta) bool { return truncateDay(field(meta)).Before(day) }, nil
}

func compareInt64(comp grammar.Comparator, field func(scan.FileMeta) int64, literal int64) Predicate {
	if comp == grammar.CompGreater {
		return func(meta scan.FileMeta) bool { return field(meta) > literal }
	}
	return func(meta scan.FileMeta) bool { return field(meta) < literal }
}

func anyOf(preds []Predicate) Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return func(meta scan.FileMeta) bool {
		for _, p := range preds {
			if p(meta) {
				return true
			}
		}
		return false
	}
}
