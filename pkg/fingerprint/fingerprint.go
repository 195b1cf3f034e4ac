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

// Package fingerprint derives the deterministic cache key for an archive
// input set.
//
// The fingerprint covers the ordered (name, size, source identity) tuples of
// the input set, not the payload contents. Two input sets with identical
// names, sizes and sources always fingerprint identically, which approximates
// content equality without an extra read pass over every input. A source
// whose contents change in place while keeping its size defeats this
// approximation; callers that need exact content equality must disable
// caching for those inputs.
package fingerprint

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"io"
)

// SourceInline is the source identity for payloads provided in memory
const SourceInline = "inline"

// Tuple identifies one archive entry within a fingerprint
type Tuple struct {
	Name   string
	Size   int64
	Source string
}

// Sum returns the hex fingerprint of the ordered tuple set. Field values are
// length-prefixed so adjacent tuples cannot collide by concatenation.
func Sum(tuples []Tuple) string {
	h := md5.New()
	for i := range tuples {
		writeField(h, tuples[i].Name)
		binary.Write(h, binary.BigEndian, tuples[i].Size)
		writeField(h, tuples[i].Source)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(w io.Writer, s string) {
	binary.Write(w, binary.BigEndian, int64(len(s)))
	io.WriteString(w, s)
}
