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

package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"
)

func TestNew(t *testing.T) {
	o := New()
	require.Equal(t, DefaultCompressionLevel, o.CompressionLevel)
	require.True(t, o.CacheEnabled)
	require.True(t, o.VerifyIntegrity)
	require.Equal(t, int64(DefaultMaxFileSizeMB*1024*1024), o.MaxFileSizeBytes)
	require.NotNil(t, o.Guard)
	require.NoError(t, o.Validate())
}

func TestClone(t *testing.T) {
	o := New()
	o.CompressionLevel = 9
	c := o.Clone()
	require.Equal(t, o, c)
	c.Guard.MemoryHighWaterPct = 50
	require.NotEqual(t, o.Guard.MemoryHighWaterPct, c.Guard.MemoryHighWaterPct)
}

func TestInitializeClampsCompressionLevel(t *testing.T) {
	o := New()
	o.CompressionLevel = 42
	require.NoError(t, o.Initialize())
	require.Equal(t, 9, o.CompressionLevel)

	o.CompressionLevel = -3
	require.NoError(t, o.Initialize())
	require.Equal(t, 0, o.CompressionLevel)
}

func TestInitializeDefaultsUnsetFields(t *testing.T) {
	o := &Options{}
	require.NoError(t, o.Initialize())
	require.Equal(t, int64(DefaultMaxTotalSizeMB), o.MaxTotalSizeMB)
	require.Equal(t, DefaultMaxRetries, o.MaxRetries)
	require.Equal(t, DefaultCacheName, o.CacheName)
	require.Equal(t, int64(DefaultChunkSizeBytes), o.ChunkSizeBytes)
	require.NotNil(t, o.Guard)
}

func TestValidateFailures(t *testing.T) {
	o := New()
	o.MaxFileSizeMB = 1000
	require.Error(t, o.Initialize())

	o = New()
	o.ChunkSizeBytes = 64 * 1024 * 1024
	require.Error(t, o.Initialize())
}

func TestYAMLOverlay(t *testing.T) {
	o := New()
	doc := []byte(`
compression_level: 3
max_file_size_mb: 10
cache_enabled: false
retry:
  initial_backoff_ms: 50
resource_guard:
  policy: strict
`)
	require.NoError(t, yaml.Unmarshal(doc, o))
	require.NoError(t, o.Initialize())
	require.Equal(t, 3, o.CompressionLevel)
	require.Equal(t, int64(10*1024*1024), o.MaxFileSizeBytes)
	require.False(t, o.CacheEnabled)
	require.Equal(t, 50*time.Millisecond, o.Retry.InitialBackoff)
	// absent keys keep their defaults
	require.Equal(t, int64(DefaultMaxTotalSizeMB), o.MaxTotalSizeMB)
	require.True(t, o.VerifyIntegrity)
}
