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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the settings from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Settings, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclGroup struct {
		Name    string   `hcl:"name,label"`
		Filters []string `hcl:"filters"`
	}
	type hclSettings struct {
		BackupRoot  string     `hcl:"backup_root,optional"`
		MaxHistory  int        `hcl:"max_history,optional"`
		ScanWorkers int        `hcl:"scan_workers,optional"`
		Groups      []hclGroup `hcl:"group,block"`
	}

	var hclCfg hclSettings
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Settings{
		BackupRoot:  hclCfg.BackupRoot,
		MaxHistory:  hclCfg.MaxHistory,
		ScanWorkers: hclCfg.ScanWorkers,
	}
	for _, g := range hclCfg.Groups {
		cfg.Groups = append(cfg.Groups, GroupDef{Name: g.Name, Filters: g.Filters})
	}

	return cfg, nil
}
