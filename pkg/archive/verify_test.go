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
	"testing"

	"github.com/docuforge/bundler/pkg/errors"

	"github.com/stretchr/testify/require"
)

// buildContainer returns stored (uncompressed) container bytes for the
// provided payloads so tests can corrupt entry data at known offsets
func buildContainer(t *testing.T, payloads map[string][]byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	cw := newContainerWriter(buf, 0)
	for name, data := range payloads {
		w, err := cw.create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, cw.close())
	return buf.Bytes()
}

func TestVerify(t *testing.T) {
	container := buildContainer(t, map[string][]byte{
		"a.txt": []byte("first payload"),
	})
	require.NoError(t, Verify(container, 1))
}

func TestVerifyGarbage(t *testing.T) {
	err := Verify([]byte("not a container at all"), 1)
	var ierr *errors.IntegrityError
	require.ErrorAs(t, err, &ierr)
}

func TestVerifyTruncated(t *testing.T) {
	container := buildContainer(t, map[string][]byte{
		"a.txt": []byte("first payload"),
	})
	err := Verify(container[:len(container)/2], 1)
	var ierr *errors.IntegrityError
	require.ErrorAs(t, err, &ierr)
}

func TestVerifyEntryCountMismatch(t *testing.T) {
	container := buildContainer(t, map[string][]byte{
		"a.txt": []byte("first payload"),
	})
	err := Verify(container, 2)
	var ierr *errors.IntegrityError
	require.ErrorAs(t, err, &ierr)
	require.Contains(t, err.Error(), "expected 2 entries")
}

func TestVerifyCorruptEntryData(t *testing.T) {
	payload := []byte("stored uncompressed so the payload bytes appear verbatim")
	container := buildContainer(t, map[string][]byte{"a.txt": payload})

	// flip a payload byte in place; the central directory still parses but
	// the entry checksum no longer matches
	i := bytes.Index(container, payload)
	require.GreaterOrEqual(t, i, 0)
	corrupt := bytes.Clone(container)
	corrupt[i] ^= 0xff
	err := Verify(corrupt, 1)
	var ierr *errors.IntegrityError
	require.ErrorAs(t, err, &ierr)
	require.Contains(t, err.Error(), "a.txt")
}
