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

// Package walker enumerates candidate source files under a set of roots.
package walker

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📄 Candidate is a file eligible for rewriting.
type Candidate struct {
	Root string // Walk root the file was found under
	Path string // Path on disk
	Rel  string // Slash-separated path relative to Root
}

// 🔧 Options configures a Walker
type Options struct {
	Roots      []string
	Extensions []string // Allowed name suffixes; empty allows everything
	Exclude    []string // Directory names never descended into
	Ignore     []string // Globs matched against Rel

	// OnMissingRoot is called for each root that does not exist.
	OnMissingRoot func(root string)
}

// 🚶 Walker lazily enumerates candidates in lexical order.
type Walker struct {
	opts Options
}

// New creates a new Walker
func New(opts Options) *Walker {
	return &Walker{opts: opts}
}

// Walk yields candidates one at a time. Missing roots produce no candidates
// and no error. Read errors are yielded with the offending path and the walk
// continues. Cancelling ctx stops the walk without an error.
func (w *Walker) Walk(ctx context.Context) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		seen := make(map[string]bool)
		for _, root := range w.opts.Roots {
			if ctx.Err() != nil {
				return
			}
			if !w.walkRoot(ctx, root, seen, yield) {
				return
			}
		}
	}
}

// walkRoot returns false once the consumer stops iterating.
func (w *Walker) walkRoot(ctx context.Context, root string, seen map[string]bool, yield func(Candidate, error) bool) bool {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("root", root).Msg("root does not exist, skipping")
			if w.opts.OnMissingRoot != nil {
				w.opts.OnMissingRoot(root)
			}
			return true
		}
		return yield(Candidate{Root: root, Path: root}, errors.Errorf("reading root %s: %w", root, err))
	}

	if !info.IsDir() {
		rel := filepath.Base(root)
		if !info.Mode().IsRegular() || !w.accepts(rel) {
			return true
		}
		return w.emit(Candidate{Root: root, Path: root, Rel: rel}, seen, yield)
	}

	keepGoing := true
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			if !yield(Candidate{Root: root, Path: path}, errors.Errorf("reading %s: %w", path, err)) {
				keepGoing = false
				return filepath.SkipAll
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if slices.Contains(w.opts.Exclude, d.Name()) || w.ignored(rel) {
				logger.Trace().Str("dir", rel).Msg("skipping directory")
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks, devices and sockets are never rewritten
		if !d.Type().IsRegular() {
			logger.Trace().Str("path", rel).Stringer("type", d.Type()).Msg("skipping irregular file")
			return nil
		}

		if !w.accepts(rel) {
			return nil
		}

		if !w.emit(Candidate{Root: root, Path: path, Rel: rel}, seen, yield) {
			keepGoing = false
			return filepath.SkipAll
		}
		return nil
	})

	return keepGoing
}

func (w *Walker) emit(c Candidate, seen map[string]bool, yield func(Candidate, error) bool) bool {
	key, err := filepath.Abs(c.Path)
	if err != nil {
		key = filepath.Clean(c.Path)
	}
	if seen[key] {
		return true
	}
	seen[key] = true
	return yield(c, nil)
}

func (w *Walker) accepts(rel string) bool {
	return HasExtension(rel, w.opts.Extensions) && !w.ignored(rel)
}

func (w *Walker) ignored(rel string) bool {
	for _, pattern := range w.opts.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// HasExtension reports whether the final element of name ends in one of exts.
// An empty exts allows every name.
func HasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	base := filepath.Base(filepath.FromSlash(name))
	for _, ext := range exts {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}
