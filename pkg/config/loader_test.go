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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewriterc/pkg/config/model"
	"gitlab.com/tozd/go/errors"
)

const yamlRuleSet = `
roots: [frontend/src]
extensions: [.ts, .tsx]
concurrency: 4
passes:
  - name: actions
    include: ["Events/**"]
    rules:
      - pattern: fetchSeries
        replacement: fetchEvents
      - pattern: 'state\.series\.'
        replacement: state.events.
        regex: true
  - name: types
    rules:
      - pattern: Series
        replacement: Event
        scope: type
`

const jsonRuleSet = `{
  "roots": ["frontend/src"],
  "extensions": [".ts", ".tsx"],
  "concurrency": 4,
  "passes": [
    {
      "name": "actions",
      "include": ["Events/**"],
      "rules": [
        {"pattern": "fetchSeries", "replacement": "fetchEvents"},
        {"pattern": "state\\.series\\.", "replacement": "state.events.", "regex": true}
      ]
    },
    {
      "name": "types",
      "rules": [{"pattern": "Series", "replacement": "Event", "scope": "type"}]
    }
  ]
}`

const hclRuleSet = `
roots       = ["frontend/src"]
extensions  = [".ts", ".tsx"]
concurrency = 4

pass "actions" {
  include = ["Events/**"]

  rule {
    pattern     = "fetchSeries"
    replacement = "fetchEvents"
  }

  rule {
    pattern     = "state\\.series\\."
    replacement = "state.events."
    regex       = true
  }
}

pass "types" {
  rule {
    pattern     = "Series"
    replacement = "Event"
    scope       = "type"
  }
}
`

const tomlRuleSet = `
roots = ["frontend/src"]
extensions = [".ts", ".tsx"]
concurrency = 4

[[passes]]
name = "actions"
include = ["Events/**"]

  [[passes.rules]]
  pattern = "fetchSeries"
  replacement = "fetchEvents"

  [[passes.rules]]
  pattern = 'state\.series\.'
  replacement = "state.events."
  regex = true

[[passes]]
name = "types"

  [[passes.rules]]
  pattern = "Series"
  replacement = "Event"
  scope = "type"
`

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func assertExpectedRuleSet(t *testing.T, cfg *model.Config) {
	t.Helper()
	assert.Equal(t, []string{"frontend/src"}, cfg.Roots)
	assert.Equal(t, []string{".ts", ".tsx"}, cfg.Extensions)
	assert.Equal(t, 4, cfg.Concurrency)
	require.Len(t, cfg.Passes, 2)

	actions := cfg.Passes[0]
	assert.Equal(t, "actions", actions.Name)
	assert.Equal(t, []string{"Events/**"}, actions.Include)
	require.Len(t, actions.Rules, 2)
	assert.Equal(t, model.Rule{Pattern: "fetchSeries", Replacement: "fetchEvents"}, actions.Rules[0])
	assert.Equal(t, model.Rule{Pattern: `state\.series\.`, Replacement: "state.events.", Regex: true}, actions.Rules[1])

	types := cfg.Passes[1]
	assert.Equal(t, "types", types.Name)
	require.Len(t, types.Rules, 1)
	assert.Equal(t, model.ScopeType, types.Rules[0].Scope)

	// defaults
	assert.Equal(t, model.DefaultExclude, cfg.Exclude)
	assert.Equal(t, "10s", cfg.MatchTimeout)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{name: "yaml", filename: ".rewriterc.yaml", content: yamlRuleSet},
		{name: "yml", filename: "rules.yml", content: yamlRuleSet},
		{name: "json", filename: "rules.json", content: jsonRuleSet},
		{name: "hcl", filename: "rules.hcl", content: hclRuleSet},
		{name: "toml", filename: "rules.toml", content: tomlRuleSet},
		{name: "bare_rewriterc_yaml", filename: ".rewriterc", content: yamlRuleSet},
		{name: "bare_rewriterc_hcl", filename: ".rewriterc", content: hclRuleSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := Load(testContext(t), path)
			require.NoError(t, err)
			assertExpectedRuleSet(t, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		content   string
		wantError string
		wantBase  error
	}{
		{
			name:      "unknown_extension",
			filename:  "rules.txt",
			content:   "passes: []",
			wantError: "no parser found for file",
		},
		{
			name:      "yaml_unknown_field",
			filename:  "rules.yaml",
			content:   "passes:\n  - name: a\n    rulez: []\n",
			wantError: "parsing YAML",
		},
		{
			name:      "json_unknown_field",
			filename:  "rules.json",
			content:   `{"passes": [], "bogus": true}`,
			wantError: "parsing JSON",
		},
		{
			name:      "toml_unknown_field",
			filename:  "rules.toml",
			content:   "bogus = 1\n",
			wantError: "parsing TOML",
		},
		{
			name:      "hcl_syntax_error",
			filename:  "rules.hcl",
			content:   "pass \"a\" {",
			wantError: "parsing HCL",
		},
		{
			name:      "hcl_missing_pattern",
			filename:  "rules.hcl",
			content:   "pass \"a\" {\n  rule {\n    replacement = \"b\"\n  }\n}\n",
			wantError: "decoding HCL",
		},
		{
			name:      "validation_failure",
			filename:  "rules.yaml",
			content:   "passes: []\n",
			wantError: "at least one pass is required",
			wantBase:  model.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(testContext(t), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
			if tt.wantBase != nil {
				assert.True(t, errors.Is(err, tt.wantBase))
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testContext(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestHCL_EnvVariable(t *testing.T) {
	t.Setenv("REWRITERC_TEST_ROOT", "app/src")

	cfg, err := Parse(testContext(t), "rules.hcl", []byte(`
roots = [env.REWRITERC_TEST_ROOT]

pass "only" {
  rule {
    pattern     = "a"
    replacement = "b"
  }
}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"app/src"}, cfg.Roots)
}

func TestGetParser(t *testing.T) {
	tests := []struct {
		filename string
		want     Parser
	}{
		{filename: "config.yaml", want: &YAMLParser{}},
		{filename: "config.YML", want: &YAMLParser{}},
		{filename: "config.json", want: &JSONParser{}},
		{filename: "config.hcl", want: &HCLParser{}},
		{filename: "config.toml", want: &TOMLParser{}},
		{filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	_, err := Discover(dir)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rewriterc.hcl"), []byte(hclRuleSet), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rewriterc.json"), []byte(jsonRuleSet), 0o644))

	path, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".rewriterc.hcl"), path)
}
