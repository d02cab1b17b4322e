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
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidConfig is the base error for every configuration problem.
var ErrInvalidConfig = errors.Base("invalid configuration")

// 🎯 Scope names accepted in rule definitions
const (
	ScopeAny    = "any"
	ScopeWord   = "word"
	ScopeImport = "import"
	ScopeType   = "type"
)

// 🔧 Defaults applied by Validate
var (
	DefaultRoots        = []string{"."}
	DefaultExtensions   = []string{".ts", ".tsx", ".js", ".jsx"}
	DefaultExclude      = []string{"node_modules", ".git"}
	DefaultImportRoots  = []string{"./", "../", "@"}
	DefaultMatchTimeout = "10s"
)

// 🔄 Rule represents a single rewrite rule. Scope restricts the structural
// context a match may appear in; Regex marks Pattern as a regular expression
// whose groups Replacement may reference.
type Rule struct {
	Pattern     string `json:"pattern" yaml:"pattern" toml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement" toml:"replacement"`
	Scope       string `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty"`
	Regex       bool   `json:"regex,omitempty" yaml:"regex,omitempty" toml:"regex,omitempty"`
}

// 📦 Pass is a named, ordered group of rules
type Pass struct {
	Name       string   `json:"name" yaml:"name" toml:"name"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty" toml:"extensions,omitempty"` // Narrows the rule set's extensions
	Include    []string `json:"include,omitempty" yaml:"include,omitempty" toml:"include,omitempty"`          // Globs relative to the walk root
	Ignore     []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`             // Globs relative to the walk root
	Rules      []Rule   `json:"rules" yaml:"rules" toml:"rules"`
}

// 📚 Config is the complete definition of one migration
type Config struct {
	Roots        []string `json:"roots,omitempty" yaml:"roots,omitempty" toml:"roots,omitempty"`
	Extensions   []string `json:"extensions,omitempty" yaml:"extensions,omitempty" toml:"extensions,omitempty"`
	Exclude      []string `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty"`                // Directory names skipped while walking
	Ignore       []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`                   // Globs skipped while walking
	ImportRoots  []string `json:"import_roots,omitempty" yaml:"import_roots,omitempty" toml:"import_roots,omitempty"` // Prefixes an import path literal must start with
	Concurrency  int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`
	MatchTimeout string   `json:"match_timeout,omitempty" yaml:"match_timeout,omitempty" toml:"match_timeout,omitempty"`
	Passes       []Pass   `json:"passes" yaml:"passes" toml:"passes"`
}

func invalid(format string, args ...any) error {
	return errors.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// 🔍 Validate checks the definition and fills in defaults
func (cfg *Config) Validate() error {
	if len(cfg.Passes) == 0 {
		return invalid("at least one pass is required")
	}
	if cfg.Concurrency < 0 {
		return invalid("concurrency must not be negative, got %d", cfg.Concurrency)
	}

	// Set defaults
	if len(cfg.Roots) == 0 {
		cfg.Roots = append([]string(nil), DefaultRoots...)
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Exclude == nil {
		cfg.Exclude = append([]string(nil), DefaultExclude...)
	}
	if len(cfg.ImportRoots) == 0 {
		cfg.ImportRoots = append([]string(nil), DefaultImportRoots...)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
	if cfg.MatchTimeout == "" {
		cfg.MatchTimeout = DefaultMatchTimeout
	}

	timeout, err := time.ParseDuration(cfg.MatchTimeout)
	if err != nil {
		return invalid("match_timeout %q: %v", cfg.MatchTimeout, err)
	}
	if timeout <= 0 {
		return invalid("match_timeout must be positive, got %q", cfg.MatchTimeout)
	}

	// Clean up paths
	for i, root := range cfg.Roots {
		if strings.TrimSpace(root) == "" {
			return invalid("roots[%d] is empty", i)
		}
		cfg.Roots[i] = filepath.Clean(root)
	}
	for i, ext := range cfg.Extensions {
		cfg.Extensions[i] = normalizeExtension(ext)
	}

	if err := validateGlobs("ignore", cfg.Ignore); err != nil {
		return err
	}

	seen := make(map[string]bool, len(cfg.Passes))
	for i := range cfg.Passes {
		pass := &cfg.Passes[i]
		if pass.Name == "" {
			return invalid("passes[%d]: name is required", i)
		}
		if seen[pass.Name] {
			return invalid("pass %q: duplicate name", pass.Name)
		}
		seen[pass.Name] = true

		if err := pass.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pass) validate() error {
	if len(p.Rules) == 0 {
		return invalid("pass %q: at least one rule is required", p.Name)
	}
	for i, ext := range p.Extensions {
		p.Extensions[i] = normalizeExtension(ext)
	}
	if err := validateGlobs(fmt.Sprintf("pass %q: include", p.Name), p.Include); err != nil {
		return err
	}
	if err := validateGlobs(fmt.Sprintf("pass %q: ignore", p.Name), p.Ignore); err != nil {
		return err
	}

	for i, r := range p.Rules {
		if r.Pattern == "" {
			return invalid("pass %q: rule %d: pattern is required", p.Name, i)
		}
		switch r.Scope {
		case "", ScopeAny, ScopeWord, ScopeImport, ScopeType:
		default:
			return invalid("pass %q: rule %d: unknown scope %q", p.Name, i, r.Scope)
		}
	}
	return nil
}

// 🎯 EffectiveScope returns the scope a rule is matched in when none is declared
func (r Rule) EffectiveScope() string {
	if r.Scope != "" {
		return r.Scope
	}
	if r.Regex {
		return ScopeAny
	}
	return ScopeWord
}

// ⏱️ Timeout returns the parsed match timeout, zero when unset or unparsable
func (cfg *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(cfg.MatchTimeout)
	if err != nil {
		return 0
	}
	return d
}

// 📋 RuleCount returns the number of rules across all passes
func (cfg *Config) RuleCount() int {
	n := 0
	for _, p := range cfg.Passes {
		n += len(p.Rules)
	}
	return n
}

// 📝 String returns a short description of the definition
func (cfg *Config) String() string {
	return fmt.Sprintf("%d passes, %d rules over %s", len(cfg.Passes), cfg.RuleCount(), strings.Join(cfg.Roots, ", "))
}

func validateGlobs(field string, patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return invalid("%s: invalid glob %q", field, pattern)
		}
	}
	return nil
}

func normalizeExtension(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
