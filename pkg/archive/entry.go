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

import (
	"bytes"
	"io"
	"os"

	"github.com/docuforge/bundler/pkg/fingerprint"
)

// Entry is a single registered archive input. Entries are appended to the
// builder's input set at registration time and written to the container in
// registration order.
type Entry struct {
	// Name is the entry's name within the container, unique per input set
	Name string
	// Size is the payload size in bytes, known at registration time
	Size int64
	// Streamed indicates the entry is routed through a spool file rather
	// than held fully in memory during the write
	Streamed bool

	content []byte // inline payload, nil for path references
	path    string // absolute source path, empty for inline payloads
}

// source returns the entry's source identity for fingerprinting
func (e *Entry) source() string {
	if e.path != "" {
		return e.path
	}
	return fingerprint.SourceInline
}

// tuple returns the entry's fingerprint tuple
func (e *Entry) tuple() fingerprint.Tuple {
	return fingerprint.Tuple{Name: e.Name, Size: e.Size, Source: e.source()}
}

// open returns a reader over the entry's payload. Path-referenced entries are
// opened lazily so registration never holds file handles.
func (e *Entry) open() (io.ReadCloser, error) {
	if e.path != "" {
		return os.Open(e.path)
	}
	return io.NopCloser(bytes.NewReader(e.content)), nil
}
