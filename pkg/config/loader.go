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
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/config/model"
	"gitlab.com/tozd/go/errors"
)

// DefaultFileNames are looked up, in order, when no config file is given.
var DefaultFileNames = []string{
	".rewriterc.yaml",
	".rewriterc.yml",
	".rewriterc.hcl",
	".rewriterc.json",
	".rewriterc.toml",
	".rewriterc",
}

// Load loads and validates a rule set definition from a file.
// The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// - .toml for TOML
// - a bare .rewriterc will try both YAML and HCL formats
func Load(ctx context.Context, path string) (*model.Config, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading rule set")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	return Parse(ctx, path, data)
}

// Parse parses and validates a rule set definition. The filename only selects
// the parser.
func Parse(ctx context.Context, filename string, data []byte) (*model.Config, error) {
	var cfg *model.Config
	var err error

	if filepath.Base(filename) == ".rewriterc" || filepath.Ext(filename) == ".rewriterc" {
		// Try YAML first
		cfg, err = (&YAMLParser{}).Parse(ctx, data)
		if err != nil {
			var hclErr error
			cfg, hclErr = (&HCLParser{}).Parse(ctx, data)
			if hclErr != nil {
				return nil, errors.Errorf("parsing %s as YAML (%v) or HCL: %w", filename, err, hclErr)
			}
		}
	} else {
		p := GetParser(filename)
		if p == nil {
			return nil, errors.Errorf("no parser found for file: %s", filename)
		}
		cfg, err = p.Parse(ctx, data)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("file", filename).Stringer("rule_set", cfg).Msg("rule set loaded")
	return cfg, nil
}

// Discover returns the first default config file present in dir.
func Discover(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.Errorf("no config file found in %s (looked for %v)", dir, DefaultFileNames)
}
