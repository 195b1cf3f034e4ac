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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func TestNewConfig(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Initialize())
	require.Contains(t, c.Caches, DefaultCacheName)
	require.Equal(t, DefaultCacheName, c.Archive.CacheName)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
main:
  instance_id: 2
logging:
  log_level: debug
archive:
  compression_level: 9
  cache_name: results
caches:
  results:
    provider: filesystem
    filesystem:
      cache_path: /tmp/bundler-test/cache
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Main.InstanceID)
	require.Equal(t, "debug", c.Logging.LogLevel)
	require.Equal(t, 9, c.Archive.CompressionLevel)
	require.Equal(t, "results", c.Archive.CacheName)

	rc, ok := c.Caches["results"]
	require.True(t, ok)
	require.Equal(t, "results", rc.Name)
	require.Equal(t, "filesystem", rc.Provider)
	require.Equal(t, "/tmp/bundler-test/cache", rc.Filesystem.CachePath)

	// unlisted sections keep defaults
	require.True(t, c.Archive.VerifyIntegrity)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "archive: [this is not a mapping")
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not parse config file")
}

func TestLoadUnknownCacheReference(t *testing.T) {
	path := writeConfig(t, `
archive:
  cache_name: nowhere
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown cache")
}

func TestInitializeEmptyConfig(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.Initialize())
	require.NotNil(t, c.Main)
	require.NotNil(t, c.Logging)
	require.NotNil(t, c.Archive)
	require.Contains(t, c.Caches, DefaultCacheName)
}
