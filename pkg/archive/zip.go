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
	"io"
	"time"

	"github.com/klauspost/compress/flate"
)

// containerWriter wraps a zip.Writer configured for the builder's compression
// level. Level 0 stores entries uncompressed; levels 1-9 deflate with the
// corresponding effort.
type containerWriter struct {
	zw    *zip.Writer
	level int
	now   time.Time
}

func newContainerWriter(w io.Writer, level int) *containerWriter {
	zw := zip.NewWriter(w)
	if level > 0 {
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}
	return &containerWriter{zw: zw, level: level, now: time.Now()}
}

// create opens a new named entry in the container and returns its writer.
// Entries must be written strictly one at a time.
func (c *containerWriter) create(name string) (io.Writer, error) {
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: c.now,
	}
	if c.level == 0 {
		hdr.Method = zip.Store
	}
	return c.zw.CreateHeader(hdr)
}

// close finalizes the container's central directory
func (c *containerWriter) close() error {
	return c.zw.Close()
}
