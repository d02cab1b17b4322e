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
	"golang.org/x/sync/errgroup"
)

// 🏃 runner executes per-file work, in discovery order or with bounded
// fan-out. Go blocks while jobs workers are busy, so discovery never runs
// far ahead of processing.
type runner struct {
	jobs int
	g    errgroup.Group
}

// 🏗️ newRunner creates a new runner
func newRunner(jobs int) *runner {
	r := &runner{jobs: max(jobs, 1)}
	r.g.SetLimit(r.jobs)
	return r
}

// Go runs fn on the calling goroutine when sequential.
func (r *runner) Go(fn func()) {
	if r.jobs == 1 {
		fn()
		return
	}
	r.g.Go(func() error {
		fn()
		return nil
	})
}

// Wait blocks until all started work is done.
func (r *runner) Wait() {
	_ = r.g.Wait()
}
