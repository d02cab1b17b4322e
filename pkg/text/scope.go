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
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/walteh/rewriterc/pkg/config/model"
)

// Scope is the structural context a rule's pattern may match in.
type Scope string

const (
	ScopeAny    Scope = model.ScopeAny
	ScopeWord   Scope = model.ScopeWord
	ScopeImport Scope = model.ScopeImport
	ScopeType   Scope = model.ScopeType
)

// identClass matches one identifier-continuation character.
const identClass = `[\p{L}\p{Nd}_$]`

// typeMarker is a lookbehind for a type-introducing marker: a colon,
// a generic-open bracket or a union pipe, then optional blanks.
const typeMarker = `(?<=[:<|][ \t]*)`

// importLiteral finds a single- or double-quoted literal that follows
// from, import or require, optionally inside call parentheses.
var importLiteral = regexp2.MustCompile(`(?<=\b(?:from|import|require)\s*\(?\s*)(?:'[^'\r\n\\]*'|"[^"\r\n\\]*")`, regexp2.None)

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// guards reports which edges of a pattern need an identifier guard. A
// literal only needs one on an edge that is itself an identifier character;
// the edges of a regular expression are unknown, so both are guarded.
func guards(pattern string, regex bool) (lead, trail bool) {
	if regex {
		return true, true
	}
	first, _ := utf8.DecodeRuneInString(pattern)
	last, _ := utf8.DecodeLastRuneInString(pattern)
	return isIdentRune(first), isIdentRune(last)
}

// scopedExpr wraps expr so it only matches inside the given scope. The
// import scope is handled by importPaths instead.
func scopedExpr(scope Scope, expr, pattern string, regex bool) string {
	lead, trail := guards(pattern, regex)

	var b strings.Builder
	switch scope {
	case ScopeWord:
		if lead {
			b.WriteString(`(?<!` + identClass + `)`)
		}
		b.WriteString(`(?:` + expr + `)`)
		if trail {
			b.WriteString(`(?!` + identClass + `)`)
		}
	case ScopeType:
		b.WriteString(typeMarker)
		b.WriteString(`(?:` + expr + `)`)
		if trail {
			b.WriteString(`(?!` + identClass + `)`)
		}
	default:
		return expr
	}
	return b.String()
}

// importPaths decides whether a quoted literal body is an import path.
type importPaths struct {
	roots []string
}

func isPathRune(r rune) bool {
	switch r {
	case '_', '$', '@', '.', '~', '-', '/':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// matches reports whether body contains only path-segment characters and
// starts with one of the module-root markers.
func (p *importPaths) matches(body string) bool {
	if body == "" {
		return false
	}
	for _, r := range body {
		if !isPathRune(r) {
			return false
		}
	}
	for _, root := range p.roots {
		if strings.HasPrefix(body, root) {
			return true
		}
	}
	return false
}
