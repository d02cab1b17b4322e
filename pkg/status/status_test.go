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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func TestManager_WriteFileAtomic(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo series\n"), 0o755))

	m := New()
	require.NoError(t, m.WriteFileAtomic(ctx, path, []byte("echo events\n")))

	content, err := m.ReadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "echo events\n", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "mode should be preserved")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestManager_WriteFileAtomic_Failures(t *testing.T) {
	ctx := testContext(t)

	t.Run("missing_target", func(t *testing.T) {
		dir := t.TempDir()
		err := New().WriteFileAtomic(ctx, filepath.Join(dir, "gone.ts"), []byte("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checking target")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("target_is_directory", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "folder.ts")
		require.NoError(t, os.Mkdir(target, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

		err := New().WriteFileAtomic(ctx, target, []byte("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "renaming temp file")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp file should be removed")
		assert.Equal(t, "folder.ts", entries[0].Name())
	})
}

func TestManager_ReadFile_Missing(t *testing.T) {
	_, err := New().ReadFile(testContext(t), filepath.Join(t.TempDir(), "nope.ts"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading file")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileState(t *testing.T) {
	tests := []struct {
		state  FileState
		name   string
		failed bool
	}{
		{state: StateUnchanged, name: "unchanged"},
		{state: StateWritten, name: "written"},
		{state: StateWouldWrite, name: "would-write"},
		{state: StateReadFailed, name: "read-failed", failed: true},
		{state: StateTransformFailed, name: "transform-failed", failed: true},
		{state: StateWriteFailed, name: "write-failed", failed: true},
		{state: FileState(99), name: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.state.String())
			assert.Equal(t, tt.failed, tt.state.Failed())
		})
	}
}

func TestTracker_Report(t *testing.T) {
	ctx := testContext(t)
	tracker := NewTracker()

	tracker.Track(ctx, ChangeRecord{Path: "src/c.ts", State: StateWritten, Changed: true, Replacements: 2})
	tracker.Track(ctx, ChangeRecord{Path: "src/a.ts", State: StateUnchanged})
	tracker.Track(ctx, ChangeRecord{Path: "src/b.ts", State: StateReadFailed, Err: assert.AnError})
	tracker.MissingRoot("legacy")

	report := tracker.Report(false, true)

	require.Len(t, report.Records, 3)
	assert.Equal(t, "src/a.ts", report.Records[0].Path)
	assert.Equal(t, "src/b.ts", report.Records[1].Path)
	assert.Equal(t, "src/c.ts", report.Records[2].Path)
	assert.Equal(t, assert.AnError.Error(), report.Records[1].Error)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Changed)
	assert.Equal(t, 1, report.Errored)
	assert.Equal(t, []string{"legacy"}, report.MissingRoots)
	assert.True(t, report.Interrupted)
	assert.False(t, report.DryRun)

	assert.Len(t, report.Failures(), 1)
	assert.Len(t, report.ChangedRecords(), 1)
	assert.Empty(t, report.NotIdempotent())
}

func TestTracker_Concurrent(t *testing.T) {
	ctx := testContext(t)
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Track(ctx, ChangeRecord{Path: fmt.Sprintf("f%02d.ts", i), State: StateWritten, Changed: true})
		}()
	}
	wg.Wait()

	report := tracker.Report(false, false)
	assert.Equal(t, 50, report.Scanned)
	assert.Equal(t, 50, report.Changed)
	assert.Equal(t, "f00.ts", report.Records[0].Path)
	assert.Equal(t, "f49.ts", report.Records[49].Path)
}

func TestReport_JSON(t *testing.T) {
	tracker := NewTracker()
	tracker.Track(testContext(t), ChangeRecord{Path: "a.ts", State: StateTransformFailed, Err: assert.AnError})

	data, err := json.Marshal(tracker.Report(true, false))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["dry_run"])

	records := decoded["records"].([]any)
	require.Len(t, records, 1)
	rec := records[0].(map[string]any)
	assert.Equal(t, "transform-failed", rec["state"])
	assert.Equal(t, assert.AnError.Error(), rec["error"])
}

func TestReport_JSONRoundTrip(t *testing.T) {
	tracker := NewTracker()
	ctx := testContext(t)
	tracker.Track(ctx, ChangeRecord{Path: "a.ts", State: StateWouldWrite, Changed: true, Replacements: 2})
	tracker.Track(ctx, ChangeRecord{Path: "b.ts", State: StateWriteFailed, Err: assert.AnError})
	tracker.MissingRoot("gone")

	want := tracker.Report(true, false)
	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Records, 2)
	assert.Equal(t, StateWouldWrite, got.Records[0].State)
	assert.Equal(t, StateWriteFailed, got.Records[1].State)
	assert.Equal(t, assert.AnError.Error(), got.Records[1].Error)
	assert.Equal(t, want.Changed, got.Changed)
	assert.Equal(t, want.Errored, got.Errored)
	assert.Equal(t, []string{"gone"}, got.MissingRoots)
}

func TestFileState_UnmarshalText(t *testing.T) {
	for state := StateUnchanged; state <= StateWriteFailed; state++ {
		t.Run(state.String(), func(t *testing.T) {
			text, err := state.MarshalText()
			require.NoError(t, err)

			var got FileState
			require.NoError(t, got.UnmarshalText(text))
			assert.Equal(t, state, got)
		})
	}

	var s FileState
	err := s.UnmarshalText([]byte("exploded"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown file state "exploded"`)
}

func TestDiff(t *testing.T) {
	diff, err := Diff("src/a.ts", []byte("one\nfetchSeries()\nthree\n"), []byte("one\nfetchEvents()\nthree\n"))
	require.NoError(t, err)

	assert.Contains(t, diff, "--- a/src/a.ts")
	assert.Contains(t, diff, "+++ b/src/a.ts")
	assert.Contains(t, diff, "-fetchSeries()")
	assert.Contains(t, diff, "+fetchEvents()")

	same, err := Diff("src/a.ts", []byte("x"), []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, same)
}
