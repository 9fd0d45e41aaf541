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

// Package transform holds the pure name transforms. Every transform operates
// on the base name only: the extension is split off first and re-appended
// verbatim, so its casing is never touched.
package transform

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// Transform converts one base name into another. Implementations are pure:
// same input, same output, no I/O.
type Transform interface {
	Name() string
	Description() string
	Apply(base string) string
}

// Registry maps transform names to implementations.
type Registry struct {
	detector BoundaryDetector
	byName   map[string]Transform
}

// NewRegistry builds a registry with all built-in transforms. A nil detector
// uses the default RegexDetector.
func NewRegistry(detector BoundaryDetector) *Registry {
	if detector == nil {
		detector = RegexDetector{}
	}
	r := &Registry{
		detector: detector,
		byName:   make(map[string]Transform),
	}

	for _, t := range []Transform{
		&styleTransform{name: "snake", desc: "Convert to snake_case", detector: detector, render: joinLower("_")},
		&styleTransform{name: "kebab", desc: "Convert to kebab-case", detector: detector, render: joinLower("-")},
		&styleTransform{name: "title", desc: "Convert to Title Case", detector: detector, render: joinCapitalized(" ")},
		&styleTransform{name: "camel", desc: "Convert to camelCase", detector: detector, render: renderCamel},
		&styleTransform{name: "pascal", desc: "Convert to PascalCase", detector: detector, render: joinCapitalized("")},
		&foldTransform{name: "lower", desc: "Convert to lowercase", fold: strings.ToLower},
		&foldTransform{name: "upper", desc: "Convert to UPPERCASE", fold: strings.ToUpper},
		&cleanTransform{},
	} {
		r.byName[t.Name()] = t
	}

	return r
}

// Get returns the transform registered under name.
func (r *Registry) Get(name string) (Transform, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// SplitExt splits a file name into base and extension. The extension keeps
// its leading dot. Names with no extension, and dotfiles like .bashrc, have
// an empty extension.
func SplitExt(name string) (base, ext string) {
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// ApplyToFileName applies a transform to the base of a file name and
// re-appends the extension unchanged.
func ApplyToFileName(name string, t Transform) string {
	base, ext := SplitExt(name)
	return t.Apply(base) + ext
}

// styleTransform tokenizes via the boundary detector and re-joins.
type styleTransform struct {
	name     string
	desc     string
	detector BoundaryDetector
	render   func(words []string) string
}

func (t *styleTransform) Name() string        { return t.name }
func (t *styleTransform) Description() string { return t.desc }

func (t *styleTransform) Apply(base string) string {
	words := t.detector.Words(base)
	if len(words) == 0 {
		return base
	}
	return t.render(words)
}

// foldTransform case-folds without re-tokenizing.
type foldTransform struct {
	name string
	desc string
	fold func(string) string
}

func (t *foldTransform) Name() string             { return t.name }
func (t *foldTransform) Description() string      { return t.desc }
func (t *foldTransform) Apply(base string) string { return t.fold(base) }

var (
	cleanDisallowedRe = regexp.MustCompile(`[^\w\s.\-]`)
	cleanSpacesRe     = regexp.MustCompile(`\s+`)
	cleanEdgesRe      = regexp.MustCompile(`^[-\s.]+|[-\s.]+$`)
)

// cleanTransform strips characters outside the allow-list, collapses
// whitespace runs, and trims leading/trailing separators.
type cleanTransform struct{}

func (cleanTransform) Name() string        { return "clean" }
func (cleanTransform) Description() string { return "Remove special characters and normalize spaces" }

func (cleanTransform) Apply(base string) string {
	s := strings.TrimSpace(base)
	s = cleanSpacesRe.ReplaceAllString(s, " ")
	s = cleanDisallowedRe.ReplaceAllString(s, "")
	return cleanEdgesRe.ReplaceAllString(s, "")
}

// Change replaces every literal occurrence of Old with New. An empty New is
// reported as a removal; the substitution itself is unchanged.
type Change struct {
	Old string
	New string
}

func NewChange(old, new string) *Change {
	return &Change{Old: old, New: new}
}

func (t *Change) Name() string { return "change" }

func (t *Change) Description() string {
	if t.Removal() {
		return "Remove all occurrences of " + t.Old
	}
	return "Replace " + t.Old + " with " + t.New
}

func (t *Change) Apply(base string) string {
	return strings.ReplaceAll(base, t.Old, t.New)
}

// Removal reports whether the replacement is empty.
func (t *Change) Removal() bool { return t.New == "" }

// Regex substitutes a compiled pattern, with $1-style capture references in
// the replacement.
type Regex struct {
	re          *regexp.Regexp
	replacement string
}

// NewRegex compiles the pattern. A bad pattern fails here, before any file
// is touched.
func NewRegex(pattern, replacement string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return &Regex{re: re, replacement: replacement}, nil
}

func (t *Regex) Name() string        { return "regex" }
func (t *Regex) Description() string { return "Replace by regular expression" }

func (t *Regex) Apply(base string) string {
	return t.re.ReplaceAllString(base, t.replacement)
}

func joinLower(sep string) func([]string) string {
	return func(words []string) string {
		return strings.ToLower(strings.Join(words, sep))
	}
}

func joinCapitalized(sep string) func([]string) string {
	return func(words []string) string {
		out := make([]string, len(words))
		for i, w := range words {
			out[i] = capitalizeFirst(w)
		}
		return strings.Join(out, sep)
	}
}

func renderCamel(words []string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(capitalizeFirst(w))
	}
	return b.String()
}

func capitalizeFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
