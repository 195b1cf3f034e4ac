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

// Package metrics defines the per-build metrics snapshot returned to callers
package metrics

import "time"

// Snapshot is an immutable record of a single build outcome. It is assembled
// once when a build attempt concludes and never mutated afterward.
type Snapshot struct {
	// TotalFiles is the number of entries in the triggering input set
	TotalFiles int `cbor:"1,keyasint"`
	// TotalBytes is the pre-compression byte total of all entries
	TotalBytes int64 `cbor:"2,keyasint"`
	// CompressedBytes is the byte size of the finished container
	CompressedBytes int64 `cbor:"3,keyasint"`
	// Duration is the wall time of the successful attempt, including
	// any backoff delays incurred along the way
	Duration time.Duration `cbor:"4,keyasint"`
	// PeakMemoryBytes is the largest heap allocation observed at any
	// entry boundary during the build
	PeakMemoryBytes uint64 `cbor:"5,keyasint"`
	// StreamedFiles is the number of entries routed through a spool file
	StreamedFiles int `cbor:"6,keyasint"`
	// CachedFiles is the number of entries served from a cached container
	CachedFiles int `cbor:"7,keyasint"`
	// Errors is the number of failed attempts preceding the outcome
	Errors int `cbor:"8,keyasint"`
	// Attempts is the 1-based attempt number that produced the container
	Attempts int `cbor:"9,keyasint"`
}

// CompressionRatio returns the post/pre compression size ratio, or zero when
// no bytes were written
func (s *Snapshot) CompressionRatio() float64 {
	if s.TotalBytes == 0 {
		return 0
	}
	return float64(s.CompressedBytes) / float64(s.TotalBytes)
}
