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

package route

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FormatKind selects the output serializer.
type FormatKind int

const (
	FormatText FormatKind = iota
	FormatJSON
	FormatCSV
	FormatYAML
)

func (k FormatKind) String() string {
	switch k {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// ParseFormat parses a normalized format name.
func ParseFormat(s string) (FormatKind, error) {
	switch strings.ToLower(s) {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml":
		return FormatYAML, nil
	default:
		return 0, errors.Errorf("unknown output format %q", s)
	}
}

// FileEntry is one row of the matched/operated file list.
type FileEntry struct {
	Path        string `json:"path" yaml:"path"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Status      string `json:"status" yaml:"status"`
}

// Serialize renders the file list in the requested format.
func Serialize(kind FormatKind, entries []FileEntry) ([]byte, error) {
	switch kind {
	case FormatJSON:
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, errors.Errorf("encoding json: %w", err)
		}
		return append(data, '\n'), nil

	case FormatYAML:
		data, err := yaml.Marshal(entries)
		if err != nil {
			return nil, errors.Errorf("encoding yaml: %w", err)
		}
		return data, nil

	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"path", "destination", "status"}); err != nil {
			return nil, errors.Errorf("writing csv header: %w", err)
		}
		for _, e := range entries {
			if err := w.Write([]string{e.Path, e.Destination, e.Status}); err != nil {
				return nil, errors.Errorf("writing csv row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, errors.Errorf("flushing csv: %w", err)
		}
		return buf.Bytes(), nil

	case FormatText:
		var b strings.Builder
		for _, e := range entries {
			b.WriteString(e.Path)
			if e.Destination != "" {
				b.WriteString(" -> ")
				b.WriteString(e.Destination)
			}
			if e.Status != "" {
				b.WriteString(" [")
				b.WriteString(e.Status)
				b.WriteString("]")
			}
			b.WriteString("\n")
		}
		return []byte(b.String()), nil

	default:
		return nil, errors.Errorf("unknown format kind %d", kind)
	}
}
