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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/walteh/rewriterc/pkg/config/model"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidRule is the base error for a rule that cannot be compiled.
	ErrInvalidRule = errors.Base("invalid rule")
	// ErrMatchTimeout is returned when a rule exceeds the match timeout.
	ErrMatchTimeout = errors.Base("match timeout")
)

// 🔄 Rule is a compiled rewrite rule. It is immutable and safe for
// concurrent use.
type Rule struct {
	Pass        string
	Index       int
	Pattern     string
	Replacement string
	Scope       Scope
	Regex       bool

	re       *regexp2.Regexp
	template string
	imports  *importPaths
}

func invalidRule(pass string, index int, format string, args ...any) error {
	return errors.Errorf("%w: pass %q: rule %d: %s", ErrInvalidRule, pass, index, fmt.Sprintf(format, args...))
}

func compileRule(pass string, index int, def model.Rule, timeout time.Duration, importRoots []string) (*Rule, error) {
	r := &Rule{
		Pass:        pass,
		Index:       index,
		Pattern:     def.Pattern,
		Replacement: def.Replacement,
		Scope:       Scope(def.EffectiveScope()),
		Regex:       def.Regex,
	}

	expr := def.Pattern
	if !def.Regex {
		expr = regexp2.Escape(def.Pattern)
	}

	bare, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, invalidRule(pass, index, "pattern %q: %v", def.Pattern, err)
	}
	bare.MatchTimeout = timeout

	if empty, err := bare.MatchString(""); err == nil && empty {
		return nil, invalidRule(pass, index, "pattern %q matches the empty string", def.Pattern)
	}

	if def.Regex {
		if err := checkTemplate(def.Replacement, bare); err != nil {
			return nil, invalidRule(pass, index, "replacement %q: %v", def.Replacement, err)
		}
		r.template = def.Replacement
	} else {
		r.template = strings.ReplaceAll(def.Replacement, "$", "$$")
	}

	if r.Scope == ScopeImport {
		if !def.Regex && strings.ContainsAny(def.Pattern, `'"`) {
			return nil, invalidRule(pass, index, "import-scoped pattern %q must not contain quotes", def.Pattern)
		}
		r.re = bare
		r.imports = &importPaths{roots: importRoots}
		return r, nil
	}

	scoped := scopedExpr(r.Scope, expr, def.Pattern, def.Regex)
	if scoped == expr {
		r.re = bare
		return r, nil
	}

	r.re, err = regexp2.Compile(scoped, regexp2.None)
	if err != nil {
		return nil, invalidRule(pass, index, "pattern %q in %s scope: %v", def.Pattern, r.Scope, err)
	}
	r.re.MatchTimeout = timeout
	return r, nil
}

// checkTemplate rejects $n, ${n} and ${name} references to groups the
// expression does not define. A "$" that starts no reference is literal.
// $n takes every following digit, so with one group "$10" is rejected
// rather than left in the output as the literal text "$10".
func checkTemplate(tmpl string, re *regexp2.Regexp) error {
	numbers := map[int]bool{}
	for _, n := range re.GetGroupNumbers() {
		numbers[n] = true
	}
	names := map[string]bool{}
	for _, n := range re.GetGroupNames() {
		names[n] = true
	}

	for i := 0; i < len(tmpl)-1; i++ {
		if tmpl[i] != '$' {
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '$':
			i++
		case next == '{':
			end := strings.IndexByte(tmpl[i+2:], '}')
			if end < 0 {
				continue
			}
			ref := tmpl[i+2 : i+2+end]
			if n, err := strconv.Atoi(ref); err == nil {
				if !numbers[n] {
					return errors.Errorf("unknown group %d", n)
				}
			} else if !names[ref] {
				return errors.Errorf("unknown group %q", ref)
			}
			i += end + 2
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(tmpl) && tmpl[j] >= '0' && tmpl[j] <= '9' {
				j++
			}
			n, err := strconv.Atoi(tmpl[i+1 : j])
			if err != nil || !numbers[n] {
				return errors.Errorf("unknown group %s", tmpl[i+1:j])
			}
			i = j - 1
		}
	}
	return nil
}

// Apply rewrites every non-overlapping match in content, scanning left to
// right. It returns the new text and the number of matches replaced.
// A match that runs past the timeout fails with ErrMatchTimeout; the
// error never carries the content.
func (r *Rule) Apply(content string) (string, int, error) {
	var (
		out string
		n   int
		err error
	)
	if r.imports != nil {
		out, n, err = r.applyImport(content)
	} else {
		out, n, err = replaceAll(r.re, content, r.template)
	}
	if err != nil {
		// regexp2 quotes the whole input in its timeout message
		return "", 0, errors.Errorf("%w: %s after %s", ErrMatchTimeout, r, r.re.MatchTimeout)
	}
	return out, n, nil
}

func (r *Rule) applyImport(content string) (string, int, error) {
	count := 0
	var inner error

	out, err := importLiteral.ReplaceFunc(content, func(m regexp2.Match) string {
		lit := m.String()
		quote, body := lit[:1], lit[1:len(lit)-1]
		if inner != nil || !r.imports.matches(body) {
			return lit
		}
		replaced, n, err := replaceAll(r.re, body, r.template)
		if err != nil {
			inner = err
			return lit
		}
		count += n
		return quote + replaced + quote
	}, -1, -1)
	if err != nil {
		return "", 0, err
	}
	if inner != nil {
		return "", 0, inner
	}
	return out, count, nil
}

func replaceAll(re *regexp2.Regexp, s, template string) (string, int, error) {
	n := 0
	m, err := re.FindStringMatch(s)
	for m != nil && err == nil {
		n++
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		return s, 0, nil
	}

	out, err := re.Replace(s, template, -1, -1)
	if err != nil {
		return "", 0, err
	}
	return out, n, nil
}

// String describes the rule for reports and warnings.
func (r *Rule) String() string {
	kind := "literal"
	if r.Regex {
		kind = "regex"
	}
	return fmt.Sprintf("%s[%d] %s %q -> %q (%s)", r.Pass, r.Index, kind, r.Pattern, r.Replacement, r.Scope)
}
