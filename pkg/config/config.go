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

// Package config loads settings from HCL or YAML files. Format selection is
// extension-based through a parser registry; everything has a default, so a
// missing config file is not an error.
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/smv/pkg/grammar"
)

const (
	DefaultMaxHistory  = 50
	DefaultScanWorkers = 8
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the settings from bytes
	Parse(ctx context.Context, data []byte) (*Settings, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📦 GroupDef is a user-defined semantic group: a name bound to a fixed
// bundle of filter clauses, written in the same syntax the command line uses.
type GroupDef struct {
	Name    string   `yaml:"name"`
	Filters []string `yaml:"filters"`
}

// 📚 Settings is the complete loaded configuration.
type Settings struct {
	// BackupRoot holds the history log and backup files. Defaults to the
	// XDG data directory.
	BackupRoot string `yaml:"backup_root,omitempty"`

	// MaxHistory caps the number of undoable entries kept.
	MaxHistory int `yaml:"max_history,omitempty"`

	// ScanWorkers bounds metadata-reading concurrency in recursive scans.
	ScanWorkers int `yaml:"scan_workers,omitempty"`

	Groups []GroupDef `yaml:"groups,omitempty"`
}

// Default returns the settings used when no config file exists.
func Default() *Settings {
	return &Settings{
		BackupRoot:  filepath.Join(xdg.DataHome, "smv"),
		MaxHistory:  DefaultMaxHistory,
		ScanWorkers: DefaultScanWorkers,
	}
}

// 🎯 Load loads settings from a file. An empty path means "the default
// config location if present, otherwise pure defaults".
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		path = defaultPath()
		if _, err := os.Stat(path); err != nil {
			logger.Debug().Str("path", path).Msg("no config file, using defaults")
			return Default(), nil
		}
	}

	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaultPath() string {
	return filepath.Join(xdg.ConfigHome, "smv", "config.hcl")
}

// 🔍 Validate fills defaults and checks the loaded values.
func (cfg *Settings) Validate() error {
	if cfg.BackupRoot == "" {
		cfg.BackupRoot = filepath.Join(xdg.DataHome, "smv")
	}
	if cfg.MaxHistory == 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.MaxHistory < 1 {
		return errors.Errorf("max_history must be at least 1, got %d", cfg.MaxHistory)
	}
	if cfg.ScanWorkers == 0 {
		cfg.ScanWorkers = DefaultScanWorkers
	}
	if cfg.ScanWorkers < 1 {
		return errors.Errorf("scan_workers must be at least 1, got %d", cfg.ScanWorkers)
	}

	// Group filter strings must compile; a broken group is a config error,
	// not a runtime surprise.
	for _, g := range cfg.Groups {
		if g.Name == "" {
			return errors.Errorf("group name is required")
		}
		if len(g.Filters) == 0 {
			return errors.Errorf("group %q has no filters", g.Name)
		}
		for _, raw := range g.Filters {
			if _, err := grammar.ParseFilterClause(raw); err != nil {
				return errors.Errorf("group %q: %w", g.Name, err)
			}
		}
	}

	return nil
}

// GroupRegistry builds the semantic-group registry: built-ins plus the
// user-defined groups from this config.
func (cfg *Settings) GroupRegistry() (*grammar.GroupRegistry, error) {
	registry := grammar.NewGroupRegistry()

	for _, g := range cfg.Groups {
		clauses := make([]grammar.FilterClause, 0, len(g.Filters))
		for _, raw := range g.Filters {
			clause, err := grammar.ParseFilterClause(raw)
			if err != nil {
				return nil, errors.Errorf("group %q: %w", g.Name, err)
			}
			clauses = append(clauses, clause)
		}
		if err := registry.Register(g.Name, clauses); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
