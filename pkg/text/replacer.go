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
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidEncoding is returned for content that is not valid UTF-8.
	ErrInvalidEncoding = errors.Base("content is not valid UTF-8")
)

// RuleHit records how many times one rule matched.
type RuleHit struct {
	Pass  string
	Rule  int
	Count int
}

// ReplacementResult contains the result of running the passes over a file.
type ReplacementResult struct {
	// Whether the final text differs from the original
	WasModified bool
	// Number of matches replaced across all rules
	ReplacementCount int
	// Original content
	OriginalContent []byte
	// Modified content (equal to OriginalContent when nothing changed)
	ModifiedContent []byte
	// Names of the passes that applied to the file
	Passes []string
	// Rules that matched at least once, in application order
	Hits []RuleHit
}

// 🔄 ReplaceText runs every pass that applies to rel over content. Each
// rule sees the output of the rule before it.
func (rs *RuleSet) ReplaceText(ctx context.Context, rel string, content []byte) (*ReplacementResult, error) {
	return ApplyPasses(ctx, rs.PassesFor(rel), content)
}

// ApplyPasses runs passes in order over content. Rules never see the
// original text once an earlier rule has changed it.
func ApplyPasses(ctx context.Context, passes []*Pass, content []byte) (*ReplacementResult, error) {
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}

	result := &ReplacementResult{
		OriginalContent: content,
		ModifiedContent: content,
	}

	current := string(content)
	for _, pass := range passes {
		result.Passes = append(result.Passes, pass.Name)
		for _, rule := range pass.Rules {
			next, n, err := rule.Apply(current)
			if err != nil {
				return nil, errors.Errorf("pass %q: %w", pass.Name, err)
			}
			if n == 0 {
				continue
			}
			zerolog.Ctx(ctx).Trace().
				Str("pass", pass.Name).
				Int("rule", rule.Index).
				Int("count", n).
				Msg("rule matched")
			result.ReplacementCount += n
			result.Hits = append(result.Hits, RuleHit{Pass: pass.Name, Rule: rule.Index, Count: n})
			current = next
		}
	}

	if current != string(content) {
		result.WasModified = true
		result.ModifiedContent = []byte(current)
	}

	return result, nil
}

// ✅ IsIdempotent reports whether running the applicable passes a second
// time over already rewritten content changes nothing.
func (rs *RuleSet) IsIdempotent(ctx context.Context, rel string, rewritten []byte) (bool, error) {
	again, err := rs.ReplaceText(ctx, rel, rewritten)
	if err != nil {
		return false, err
	}
	return !again.WasModified, nil
}
