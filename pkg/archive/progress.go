/*
 * Copyright 2024 The Bundler Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package archive

// ProgressFunc receives build progress callbacks. pct is a whole percentage
// in [0, 100]; msg names the operation in flight. Callbacks are synchronous,
// so implementations must return quickly.
type ProgressFunc func(pct int, msg string)

// progressTracker apportions the 0-100 range across the entries of a build,
// reserving a tail segment for verification and completion
type progressTracker struct {
	report  ProgressFunc
	entries int
	last    int
}

const (
	// percentage of the bar spent writing entries; the remainder covers
	// verification and finalization
	writePhasePct  = 90
	verifyPhasePct = 95
)

func newProgressTracker(report ProgressFunc, entries int) *progressTracker {
	return &progressTracker{report: report, entries: entries, last: -1}
}

// entry reports progress for the i-th (0-based) entry; frac is the completed
// fraction of that entry in [0, 1]
func (p *progressTracker) entry(i int, frac float64, msg string) {
	if p.report == nil || p.entries == 0 {
		return
	}
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	pct := int((float64(i) + frac) / float64(p.entries) * writePhasePct)
	p.emit(pct, msg)
}

func (p *progressTracker) verifying() {
	p.emit(verifyPhasePct, "verifying container")
}

func (p *progressTracker) done() {
	p.emit(100, "complete")
}

// emit suppresses duplicate and regressive percentages so observers see a
// monotonic sequence
func (p *progressTracker) emit(pct int, msg string) {
	if p.report == nil || pct <= p.last {
		return
	}
	p.last = pct
	p.report(pct, msg)
}
