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

package status

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileState is the terminal state of one file in a run
type FileState int

const (
	StateUnchanged       FileState = iota // Read and transformed, nothing to write
	StateWritten                          // Rewritten on disk
	StateWouldWrite                       // Would be rewritten (dry run)
	StateReadFailed                       // Could not be read or decoded
	StateTransformFailed                  // A rule failed while matching
	StateWriteFailed                      // Transformed but the write failed
)

// String returns a string representation of FileState
func (s FileState) String() string {
	switch s {
	case StateUnchanged:
		return "unchanged"
	case StateWritten:
		return "written"
	case StateWouldWrite:
		return "would-write"
	case StateReadFailed:
		return "read-failed"
	case StateTransformFailed:
		return "transform-failed"
	case StateWriteFailed:
		return "write-failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s FileState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *FileState) UnmarshalText(text []byte) error {
	for state := StateUnchanged; state <= StateWriteFailed; state++ {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return errors.Errorf("unknown file state %q", text)
}

// Failed reports whether the state is one of the per-file failures.
func (s FileState) Failed() bool {
	return s == StateReadFailed || s == StateTransformFailed || s == StateWriteFailed
}

// 📄 ChangeRecord is the outcome for a single file
type ChangeRecord struct {
	Path          string    `json:"path"`
	State         FileState `json:"state"`
	Changed       bool      `json:"changed"`
	Replacements  int       `json:"replacements"`
	Passes        []string  `json:"passes,omitempty"`
	NotIdempotent bool      `json:"not_idempotent,omitempty"`
	Diff          string    `json:"diff,omitempty"`
	Err           error     `json:"-"`
	Error         string    `json:"error,omitempty"`
}

// 💾 FileManager handles the file system operations of a run
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFileAtomic replaces path so that readers see either the old or
	// the new content, never a partial file.
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
}

// 🔧 Manager implements FileManager on the local disk
type Manager struct{}

var _ FileManager = (*Manager)(nil)

// 🏭 New creates a new disk file manager
func New() *Manager {
	return &Manager{}
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// WriteFileAtomic writes content to a temp file next to path, syncs it,
// copies the original permissions and renames it over path. On any failure
// the original is untouched and the temp file is removed.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("checking target: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".rewriterc-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	defer func() {
		if err != nil {
			if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
				zerolog.Ctx(ctx).Warn().Err(rmErr).Str("temp", tempPath).Msg("removing temp file")
			}
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, info.Mode().Perm()); err != nil {
		return errors.Errorf("preserving file mode: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
