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

package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/docuforge/bundler/pkg/observability/logging/level"
	"github.com/docuforge/bundler/pkg/observability/logging/options"

	"github.com/stretchr/testify/require"
)

func TestStreamLogger(t *testing.T) {
	var buf bytes.Buffer
	l := StreamLogger(&buf, level.Debug)

	l.Info("test event", Pairs{"key": "value", "answer": 42})
	out := buf.String()
	require.Contains(t, out, "app=bundler")
	require.Contains(t, out, "level=info")
	require.Contains(t, out, "event=\"test event\"")
	// pairs are sorted by key
	require.Less(t, strings.Index(out, "answer=42"), strings.Index(out, "key=value"))
}

func TestLogLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := StreamLogger(&buf, level.Warn)

	l.Debug("should not appear", nil)
	l.Info("should not appear", nil)
	require.Zero(t, buf.Len())

	l.Warn("should appear", nil)
	require.Contains(t, buf.String(), "level=warn")
}

func TestSetLogLevelUnknown(t *testing.T) {
	var buf bytes.Buffer
	l := StreamLogger(&buf, level.Level("unknown"))
	require.Equal(t, level.Info, l.Level())
	require.Contains(t, buf.String(), "unknown log level")
}

func TestWarnOnce(t *testing.T) {
	var buf bytes.Buffer
	l := StreamLogger(&buf, level.Info)

	require.True(t, l.WarnOnce("k", "only once", nil))
	require.False(t, l.WarnOnce("k", "only once", nil))
	require.Equal(t, 1, strings.Count(buf.String(), "only once"))
}

func TestNewFileLogger(t *testing.T) {
	f := t.TempDir() + "/bundler.log"
	l := New(&options.Options{LogFile: f, LogLevel: "info"})
	l.Info("written to file", Pairs{"n": 1})
	l.Close()

	b, err := os.ReadFile(f)
	require.NoError(t, err)
	require.Contains(t, string(b), "written to file")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	// no writer; must not panic
	l.Error("dropped", Pairs{"k": "v"})
	l.Fatal(-1, "dropped", nil)
}
