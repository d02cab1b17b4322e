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

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func validPass() Pass {
	return Pass{
		Name:  "actions",
		Rules: []Rule{{Pattern: "fetchSeries", Replacement: "fetchEvents"}},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError string
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults_applied",
			cfg:  Config{Passes: []Pass{validPass()}},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"."}, cfg.Roots)
				assert.Equal(t, DefaultExtensions, cfg.Extensions)
				assert.Equal(t, DefaultExclude, cfg.Exclude)
				assert.Equal(t, DefaultImportRoots, cfg.ImportRoots)
				assert.Equal(t, 1, cfg.Concurrency)
				assert.Equal(t, 10*time.Second, cfg.Timeout())
			},
		},
		{
			name: "explicit_empty_exclude_kept",
			cfg:  Config{Exclude: []string{}, Passes: []Pass{validPass()}},
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Exclude)
			},
		},
		{
			name: "extensions_normalized",
			cfg: Config{
				Roots:      []string{"frontend/src/"},
				Extensions: []string{"ts", ".tsx"},
				Passes: []Pass{{
					Name:       "types",
					Extensions: []string{"d.ts"},
					Rules:      []Rule{{Pattern: "Series", Replacement: "Event", Scope: ScopeType}},
				}},
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"frontend/src"}, cfg.Roots)
				assert.Equal(t, []string{".ts", ".tsx"}, cfg.Extensions)
				assert.Equal(t, []string{".d.ts"}, cfg.Passes[0].Extensions)
			},
		},
		{
			name:      "no_passes",
			cfg:       Config{},
			wantError: "at least one pass is required",
		},
		{
			name:      "missing_pass_name",
			cfg:       Config{Passes: []Pass{{Rules: validPass().Rules}}},
			wantError: "passes[0]: name is required",
		},
		{
			name:      "duplicate_pass_name",
			cfg:       Config{Passes: []Pass{validPass(), validPass()}},
			wantError: `pass "actions": duplicate name`,
		},
		{
			name:      "pass_without_rules",
			cfg:       Config{Passes: []Pass{{Name: "empty"}}},
			wantError: `pass "empty": at least one rule is required`,
		},
		{
			name: "empty_pattern",
			cfg: Config{Passes: []Pass{{
				Name:  "broken",
				Rules: []Rule{{Replacement: "x"}},
			}}},
			wantError: `pass "broken": rule 0: pattern is required`,
		},
		{
			name: "unknown_scope",
			cfg: Config{Passes: []Pass{{
				Name:  "broken",
				Rules: []Rule{{Pattern: "a", Replacement: "b", Scope: "sentence"}},
			}}},
			wantError: `unknown scope "sentence"`,
		},
		{
			name:      "negative_concurrency",
			cfg:       Config{Concurrency: -2, Passes: []Pass{validPass()}},
			wantError: "concurrency must not be negative",
		},
		{
			name:      "bad_timeout",
			cfg:       Config{MatchTimeout: "soon", Passes: []Pass{validPass()}},
			wantError: `match_timeout "soon"`,
		},
		{
			name:      "negative_timeout",
			cfg:       Config{MatchTimeout: "-1s", Passes: []Pass{validPass()}},
			wantError: `match_timeout must be positive, got "-1s"`,
		},
		{
			name:      "zero_timeout",
			cfg:       Config{MatchTimeout: "0s", Passes: []Pass{validPass()}},
			wantError: `match_timeout must be positive, got "0s"`,
		},
		{
			name: "bad_include_glob",
			cfg: Config{Passes: []Pass{{
				Name:    "globs",
				Include: []string{"Events/[a-"},
				Rules:   validPass().Rules,
			}}},
			wantError: `invalid glob "Events/[a-"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate()

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				assert.True(t, errors.Is(err, ErrInvalidConfig), "error should wrap ErrInvalidConfig")
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, &cfg)
			}
		})
	}
}

func TestRule_EffectiveScope(t *testing.T) {
	assert.Equal(t, ScopeWord, Rule{Pattern: "Series"}.EffectiveScope())
	assert.Equal(t, ScopeAny, Rule{Pattern: `state\.series`, Regex: true}.EffectiveScope())
	assert.Equal(t, ScopeImport, Rule{Pattern: "series", Scope: ScopeImport}.EffectiveScope())
}

func TestConfig_String(t *testing.T) {
	cfg := Config{Passes: []Pass{validPass()}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "1 passes, 1 rules over .", cfg.String())
}
