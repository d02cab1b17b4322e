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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/rewriterc/pkg/config/model"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
// Strings are HCL templates, so a literal "${" in a replacement must be
// written as "$${".
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

type hclRule struct {
	Pattern     string `hcl:"pattern"`
	Replacement string `hcl:"replacement"`
	Scope       string `hcl:"scope,optional"`
	Regex       bool   `hcl:"regex,optional"`
}

type hclPass struct {
	Name       string    `hcl:"name,label"`
	Extensions []string  `hcl:"extensions,optional"`
	Include    []string  `hcl:"include,optional"`
	Ignore     []string  `hcl:"ignore,optional"`
	Rules      []hclRule `hcl:"rule,block"`
}

type hclConfig struct {
	Roots        []string  `hcl:"roots,optional"`
	Extensions   []string  `hcl:"extensions,optional"`
	Exclude      []string  `hcl:"exclude,optional"`
	Ignore       []string  `hcl:"ignore,optional"`
	ImportRoots  []string  `hcl:"import_roots,optional"`
	Concurrency  int       `hcl:"concurrency,optional"`
	MatchTimeout string    `hcl:"match_timeout,optional"`
	Passes       []hclPass `hcl:"pass,block"`
}

// 📝 Parse parses the rule set from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*model.Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "rewriterc.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &model.Config{
		Roots:        hclCfg.Roots,
		Extensions:   hclCfg.Extensions,
		Exclude:      hclCfg.Exclude,
		Ignore:       hclCfg.Ignore,
		ImportRoots:  hclCfg.ImportRoots,
		Concurrency:  hclCfg.Concurrency,
		MatchTimeout: hclCfg.MatchTimeout,
	}
	for _, hp := range hclCfg.Passes {
		pass := model.Pass{
			Name:       hp.Name,
			Extensions: hp.Extensions,
			Include:    hp.Include,
			Ignore:     hp.Ignore,
		}
		for _, r := range hp.Rules {
			pass.Rules = append(pass.Rules, model.Rule{
				Pattern:     r.Pattern,
				Replacement: r.Replacement,
				Scope:       r.Scope,
				Regex:       r.Regex,
			})
		}
		cfg.Passes = append(cfg.Passes, pass)
	}

	return cfg, nil
}

// 🌍 environment exposes the process environment as the "env" object
func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
