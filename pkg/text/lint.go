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

import "fmt"

// ConflictKind classifies a static ordering problem between rules.
type ConflictKind string

const (
	// ConflictSelfRetrigger means a rule's pattern matches its own replacement.
	ConflictSelfRetrigger ConflictKind = "self-retrigger"
	// ConflictRetrigger means an earlier rule rewrites a later rule's output
	// on the next run.
	ConflictRetrigger ConflictKind = "retrigger"
	// ConflictShadowed means an earlier rule rewrites text a later rule's
	// literal pattern needs, so the later rule may never match.
	ConflictShadowed ConflictKind = "shadowed"
)

// ⚠️ Conflict is a warning about two rules (or one) whose order matters.
type Conflict struct {
	Kind   ConflictKind
	First  *Rule
	Second *Rule
}

func (c Conflict) String() string {
	switch c.Kind {
	case ConflictSelfRetrigger:
		return fmt.Sprintf("%s: %s matches its own replacement; a second run rewrites again", c.Kind, c.First)
	case ConflictRetrigger:
		return fmt.Sprintf("%s: %s rewrites the output of %s on the next run", c.Kind, c.First, c.Second)
	default:
		return fmt.Sprintf("%s: %s runs first and changes the pattern of %s", c.Kind, c.First, c.Second)
	}
}

// rewrites reports whether r changes s.
func (r *Rule) rewrites(s string) bool {
	out, n, err := r.Apply(s)
	return err == nil && n > 0 && out != s
}

// 🔍 Conflicts statically inspects the literal replacements and patterns of
// the rule set. Rules are never reordered; the result is advisory.
func (rs *RuleSet) Conflicts() []Conflict {
	rules := rs.Rules()
	var out []Conflict

	for i, rule := range rules {
		if !rule.Regex && rule.rewrites(rule.Replacement) {
			out = append(out, Conflict{Kind: ConflictSelfRetrigger, First: rule, Second: rule})
		}

		for _, later := range rules[i+1:] {
			if later.Regex {
				continue
			}
			if rule.rewrites(later.Replacement) {
				out = append(out, Conflict{Kind: ConflictRetrigger, First: rule, Second: later})
			}
			if rule.rewrites(later.Pattern) {
				out = append(out, Conflict{Kind: ConflictShadowed, First: rule, Second: later})
			}
		}
	}

	return out
}
