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
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/docuforge/bundler/pkg/errors"
)

// Verify structurally validates container bytes: the central directory must
// parse, the entry count must match wantEntries, and every entry must read to
// EOF so its checksum is recomputed and compared. A non-nil return is always
// an *errors.IntegrityError.
func Verify(container []byte, wantEntries int) error {
	zr, err := zip.NewReader(bytes.NewReader(container), int64(len(container)))
	if err != nil {
		return &errors.IntegrityError{Detail: "container is unreadable", Err: err}
	}
	if len(zr.File) != wantEntries {
		return &errors.IntegrityError{
			Detail: fmt.Sprintf("expected %d entries, found %d", wantEntries, len(zr.File)),
		}
	}
	for _, f := range zr.File {
		if err = verifyEntry(f); err != nil {
			return &errors.IntegrityError{
				Detail: fmt.Sprintf("entry [%s] failed verification", f.Name),
				Err:    err,
			}
		}
	}
	return nil
}

// verifyEntry reads the entry to EOF; the zip reader validates the stored
// checksum when the final byte is consumed
func verifyEntry(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(io.Discard, rc)
	return err
}
