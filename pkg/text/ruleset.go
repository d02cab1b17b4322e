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

package text

import (
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/rewriterc/pkg/config/model"
	"github.com/walteh/rewriterc/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

// 📦 Pass is a compiled, ordered group of rules and the files it applies to.
type Pass struct {
	Name       string
	Extensions []string
	Include    []string
	Ignore     []string
	Rules      []*Rule
}

// 📚 RuleSet is an immutable, compiled rule set. A RuleSet is safe for
// concurrent use by multiple workers.
type RuleSet struct {
	passes     []*Pass
	defaults   []string // extensions of passes that declare none
	extensions []string // union over all passes
}

// 🔨 Compile validates cfg and compiles every rule. Any pattern or
// replacement problem is returned before a single file is touched.
func Compile(cfg *model.Config) (*RuleSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rs := &RuleSet{
		defaults:   slices.Clone(cfg.Extensions),
		extensions: slices.Clone(cfg.Extensions),
	}
	timeout := cfg.Timeout()

	for _, def := range cfg.Passes {
		pass := &Pass{
			Name:       def.Name,
			Extensions: slices.Clone(def.Extensions),
			Include:    slices.Clone(def.Include),
			Ignore:     slices.Clone(def.Ignore),
		}
		for i, rd := range def.Rules {
			rule, err := compileRule(def.Name, i, rd, timeout, cfg.ImportRoots)
			if err != nil {
				return nil, err
			}
			pass.Rules = append(pass.Rules, rule)
		}
		rs.passes = append(rs.passes, pass)

		for _, ext := range pass.Extensions {
			if !slices.Contains(rs.extensions, ext) {
				rs.extensions = append(rs.extensions, ext)
			}
		}
	}

	return rs, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(cfg *model.Config) *RuleSet {
	rs, err := Compile(cfg)
	if err != nil {
		panic(errors.Errorf("compiling rule set: %w", err))
	}
	return rs
}

// Passes returns the passes in declaration order.
func (rs *RuleSet) Passes() []*Pass {
	return rs.passes
}

// Extensions returns every extension any pass may apply to.
func (rs *RuleSet) Extensions() []string {
	return rs.extensions
}

// Rules returns every rule in application order.
func (rs *RuleSet) Rules() []*Rule {
	var rules []*Rule
	for _, p := range rs.passes {
		rules = append(rules, p.Rules...)
	}
	return rules
}

// 🎯 PassesFor returns the passes that apply to a file, in order. rel is the
// slash-separated path relative to the walk root.
func (rs *RuleSet) PassesFor(rel string) []*Pass {
	var out []*Pass
	for _, p := range rs.passes {
		if p.appliesTo(rel, rs.defaults) {
			out = append(out, p)
		}
	}
	return out
}

func (p *Pass) appliesTo(rel string, defaults []string) bool {
	exts := p.Extensions
	if len(exts) == 0 {
		exts = defaults
	}
	if !walker.HasExtension(rel, exts) {
		return false
	}
	if len(p.Include) > 0 && !matchAny(p.Include, rel) {
		return false
	}
	return !matchAny(p.Ignore, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
