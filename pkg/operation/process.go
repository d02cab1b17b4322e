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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
	"github.com/walteh/rewriterc/pkg/text"
	"github.com/walteh/rewriterc/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

// 📄 processFile reads, transforms and (unless dryRun) writes one file.
// Every failure ends up in the returned record.
func (o *Orchestrator) processFile(ctx context.Context, c walker.Candidate, dryRun bool) status.ChangeRecord {
	logger := zerolog.Ctx(ctx).With().Str("file", c.Path).Logger()
	rec := status.ChangeRecord{Path: c.Path}

	// Get file content
	content, err := o.files.ReadFile(ctx, c.Path)
	if err != nil {
		rec.State = status.StateReadFailed
		rec.Err = err
		return rec
	}

	// Apply replacements
	result, err := o.rules.ReplaceText(ctx, c.Rel, content)
	if err != nil {
		if errors.Is(err, text.ErrInvalidEncoding) {
			rec.State = status.StateReadFailed
			rec.Err = errors.Errorf("decoding file: %w", err)
			return rec
		}
		rec.State = status.StateTransformFailed
		rec.Err = err
		return rec
	}
	rec.Passes = result.Passes
	rec.Replacements = result.ReplacementCount

	if !result.WasModified {
		logger.Trace().Int("matches", result.ReplacementCount).Msg("content unchanged")
		rec.State = status.StateUnchanged
		return rec
	}
	rec.Changed = true

	if o.opts.Verify {
		idempotent, err := o.rules.IsIdempotent(ctx, c.Rel, result.ModifiedContent)
		if err != nil {
			logger.Warn().Err(err).Msg("verifying idempotence")
		}
		rec.NotIdempotent = err == nil && !idempotent
	}

	if o.opts.Diff {
		diff, err := status.Diff(c.Rel, result.OriginalContent, result.ModifiedContent)
		if err != nil {
			logger.Warn().Err(err).Msg("building diff")
		}
		rec.Diff = diff
	}

	if dryRun {
		rec.State = status.StateWouldWrite
		return rec
	}

	// Write file atomically using the file manager
	if err := o.files.WriteFileAtomic(ctx, c.Path, result.ModifiedContent); err != nil {
		rec.State = status.StateWriteFailed
		rec.Changed = false
		rec.Err = err
		return rec
	}

	rec.State = status.StateWritten
	return rec
}
