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
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📦 GroupRegistry maps semantic group names to fixed filter clause bundles.
// A group expands exactly once, at parse time; the resulting clauses are
// plain FilterClauses from then on.
type GroupRegistry struct {
	groups   map[string][]FilterClause
	builtins map[string]bool
}

// NewGroupRegistry returns a registry holding the built-in semantic groups.
func NewGroupRegistry() *GroupRegistry {
	r := &GroupRegistry{
		groups:   make(map[string][]FilterClause),
		builtins: make(map[string]bool),
	}

	builtin := map[string][]FilterClause{
		"notes": extGroup([]string{"md"}, "file"),
		"media": extGroup([]string{"jpg", "jpeg", "png", "gif", "webp", "webm", "mp4", "svg"}, "file"),
		"scripts": extGroup(
			[]string{"sh", "py", "rb", "pl", "rs", "js", "ts", "bash", "zsh"}, "file"),
		"configs": extGroup(
			[]string{"conf", "ini", "yaml", "yml", "toml", "json", "config", "cfg"}, "file"),
		"projects": projectsGroup(),
	}
	for name, clauses := range builtin {
		r.groups[name] = clauses
		r.builtins[name] = true
	}

	return r
}

func extGroup(exts []string, fileType string) []FilterClause {
	clauses := make([]FilterClause, 0, len(exts)+1)
	for _, ext := range exts {
		clauses = append(clauses, FilterClause{Keyword: KeywordExt, Comparator: CompEquals, Value: ext})
	}
	clauses = append(clauses, FilterClause{Keyword: KeywordType, Comparator: CompEquals, Value: fileType})
	return clauses
}

func projectsGroup() []FilterClause {
	clauses := []FilterClause{
		{Keyword: KeywordType, Comparator: CompEquals, Value: "folder"},
	}
	for _, name := range []string{"src", "build", "docs", "target", "dist", "bin"} {
		clauses = append(clauses, FilterClause{Keyword: KeywordName, Comparator: CompEquals, Value: name})
	}
	return clauses
}

// Register adds a user-defined group. Built-in groups cannot be shadowed and
// an existing user group cannot be redefined.
func (r *GroupRegistry) Register(name string, clauses []FilterClause) error {
	name = strings.ToLower(name)
	if name == "" {
		return errors.Errorf("group name is required")
	}
	if r.builtins[name] {
		return errors.Errorf("group %q is built in and cannot be redefined", name)
	}
	if _, ok := r.groups[name]; ok {
		return errors.Errorf("group %q is already registered", name)
	}
	if len(clauses) == 0 {
		return errors.Errorf("group %q has no filters", name)
	}
	for _, clause := range clauses {
		if clause.Keyword == KeywordFor {
			return errors.Errorf("group %q: groups cannot nest other groups", name)
		}
	}
	r.groups[name] = clauses
	return nil
}

// Expand returns the clause bundle for a group name.
func (r *GroupRegistry) Expand(name string) ([]FilterClause, bool) {
	clauses, ok := r.groups[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	out := make([]FilterClause, len(clauses))
	copy(out, clauses)
	return out, true
}

// Names returns all registered group names, sorted.
func (r *GroupRegistry) Names() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
