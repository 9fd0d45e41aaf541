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
	"unicode"
)

// Tokenize splits a raw command line into tokens. Double-quoted operands may
// contain spaces; inside quotes `\"` and `\\` are the only escapes. A quoted
// empty string produces an empty token, which CHANGE uses for removals.
func Tokenize(raw string) ([]string, error) {
	var tokens []string
	var cur strings.Builder

	inQuote := false
	escaped := false
	hasToken := false

	flush := func() {
		if hasToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			hasToken = false
		}
	}

	for _, r := range raw {
		switch {
		case escaped:
			if r != '"' && r != '\\' {
				// Unknown escapes keep the backslash verbatim.
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			hasToken = true
		case !inQuote && unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			hasToken = true
		}
	}

	if inQuote || escaped {
		return nil, &ParseError{Kind: ErrMalformedCommand, Raw: raw, Reason: "unterminated quote"}
	}
	flush()

	return tokens, nil
}
