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
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// 📋 Report summarizes one run. It is built once, after every file has a
// terminal state.
type Report struct {
	Records      []ChangeRecord `json:"records"`
	Scanned      int            `json:"scanned"`
	Changed      int            `json:"changed"`
	Errored      int            `json:"errored"`
	MissingRoots []string       `json:"missing_roots,omitempty"`
	DryRun       bool           `json:"dry_run"`
	Interrupted  bool           `json:"interrupted,omitempty"`
}

// Failures returns the records of files that failed.
func (r *Report) Failures() []ChangeRecord {
	var out []ChangeRecord
	for _, rec := range r.Records {
		if rec.State.Failed() {
			out = append(out, rec)
		}
	}
	return out
}

// ChangedRecords returns the records of files that were (or would be) rewritten.
func (r *Report) ChangedRecords() []ChangeRecord {
	var out []ChangeRecord
	for _, rec := range r.Records {
		if rec.Changed {
			out = append(out, rec)
		}
	}
	return out
}

// NotIdempotent returns the records whose rewrite changed again when reapplied.
func (r *Report) NotIdempotent() []ChangeRecord {
	var out []ChangeRecord
	for _, rec := range r.Records {
		if rec.NotIdempotent {
			out = append(out, rec)
		}
	}
	return out
}

// 📈 Tracker collects records from concurrent workers
type Tracker struct {
	formatter FileFormatter

	mu      sync.Mutex
	records map[string]ChangeRecord
	missing []string
}

// 🏭 NewTracker creates a new tracker
func NewTracker() *Tracker {
	return &Tracker{
		formatter: NewDefaultFileFormatter(),
		records:   make(map[string]ChangeRecord),
	}
}

// Track stores the terminal record of a file.
func (t *Tracker) Track(ctx context.Context, rec ChangeRecord) {
	if rec.Err != nil && rec.Error == "" {
		rec.Error = rec.Err.Error()
	}

	t.mu.Lock()
	t.records[rec.Path] = rec
	t.mu.Unlock()

	event := zerolog.Ctx(ctx).Debug()
	if rec.State.Failed() {
		event = zerolog.Ctx(ctx).Warn().Err(rec.Err)
	}
	event.Str("path", rec.Path).
		Stringer("state", rec.State).
		Int("replacements", rec.Replacements).
		Msg(t.formatter.FormatRecord(rec))
}

// MissingRoot notes a root that did not exist.
func (t *Tracker) MissingRoot(root string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.missing = append(t.missing, root)
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Report builds the run report with records sorted by path.
func (t *Tracker) Report(dryRun, interrupted bool) *Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := &Report{
		Records:      make([]ChangeRecord, 0, len(t.records)),
		MissingRoots: slices.Clone(t.missing),
		DryRun:       dryRun,
		Interrupted:  interrupted,
	}
	for _, rec := range t.records {
		report.Records = append(report.Records, rec)
		if rec.Changed {
			report.Changed++
		}
		if rec.State.Failed() {
			report.Errored++
		}
	}
	slices.SortFunc(report.Records, func(a, b ChangeRecord) int {
		return strings.Compare(a.Path, b.Path)
	})
	report.Scanned = len(report.Records)

	return report
}
