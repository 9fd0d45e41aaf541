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

package transform

import "regexp"

// BoundaryDetector tokenizes a base name into words. It is a strategy so
// detectors with different hump rules can be swapped without touching the
// styles built on top of it.
type BoundaryDetector interface {
	Words(s string) []string
}

var (
	// A run of two or more capitals followed by a capital+lower pair splits
	// before the pair: XMLDocument -> XML Document.
	acronymBoundaryRe = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)

	// A lowercase letter or digit followed by a capital splits between them.
	humpBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)

	separatorRe = regexp.MustCompile(`[\s_\-]+`)
)

// RegexDetector is the default boundary detector. It splits on whitespace,
// underscores, hyphens, and case humps.
type RegexDetector struct{}

func (RegexDetector) Words(s string) []string {
	s = acronymBoundaryRe.ReplaceAllString(s, "$1 $2")
	s = humpBoundaryRe.ReplaceAllString(s, "$1 $2")

	parts := separatorRe.Split(s, -1)
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}
