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
	"context"
	"fmt"
	"io"
	"os"
)

// spoolCopy copies src into a temporary spool file under dir in fixed-size
// chunks, then replays the spool into dst. The source is never held fully in
// memory; peak usage per entry is one chunk buffer. The context is checked at
// every chunk boundary, and report receives the cumulative bytes spooled so
// far after each chunk.
//
// The spool file is removed before return on every path, including error and
// cancellation.
func spoolCopy(ctx context.Context, dst io.Writer, src io.Reader, dir string,
	chunkSize int64, report func(done int64)) (int64, error) {

	spool, err := os.CreateTemp(dir, "spool.*.tmp")
	if err != nil {
		return 0, fmt.Errorf("could not create spool file: %w", err)
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	buf := make([]byte, chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := spool.Write(buf[:n]); werr != nil {
				return 0, fmt.Errorf("spool write failed: %w", werr)
			}
			written += int64(n)
			if report != nil {
				report(written)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, fmt.Errorf("source read failed: %w", rerr)
		}
	}

	if _, err = spool.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("spool rewind failed: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, rerr := spool.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return 0, fmt.Errorf("container write failed: %w", werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, fmt.Errorf("spool read failed: %w", rerr)
		}
	}
	return written, nil
}
