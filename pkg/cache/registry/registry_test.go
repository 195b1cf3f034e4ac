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

package registry

import (
	"testing"
	"time"

	"github.com/docuforge/bundler/pkg/cache"
	co "github.com/docuforge/bundler/pkg/cache/options"

	"github.com/stretchr/testify/require"
)

func TestNewCacheDefaultsToMemory(t *testing.T) {
	cfg := co.New()
	cfg.ReapIntervalSecs = -1
	require.NoError(t, cfg.Initialize("default"))

	c, err := NewCache("default", cfg)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Store("k", &cache.Record{Container: []byte("v"), Created: time.Now()}))
	rec, _, err := c.Retrieve("k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), rec.Container)
}

func TestNewCacheFilesystem(t *testing.T) {
	cfg := co.New()
	cfg.Provider = Filesystem
	cfg.Filesystem.CachePath = t.TempDir()
	cfg.ReapIntervalSecs = -1
	require.NoError(t, cfg.Initialize("fs"))

	c, err := NewCache("fs", cfg)
	require.NoError(t, err)
	defer c.Close()
	require.Equal(t, cfg, c.Configuration())
}

func TestNewCacheConnectError(t *testing.T) {
	cfg := co.New()
	cfg.Provider = Redis
	cfg.Redis.Endpoint = "127.0.0.1:0"
	_, err := NewCache("broken", cfg)
	require.Error(t, err)
}

func TestBackgroundReaper(t *testing.T) {
	cfg := co.New()
	require.NoError(t, cfg.Initialize("reaped"))
	cfg.ReapInterval = 10 * time.Millisecond

	c, err := NewCache("reaped", cfg)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Store("stale",
		&cache.Record{Container: []byte("v"), Created: time.Now().Add(-48 * time.Hour)}))

	require.Eventually(t, func() bool {
		_, _, err := c.Retrieve("stale")
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestLoadCachesFromConfig(t *testing.T) {
	l := co.Lookup{
		"a": co.New(),
		"b": func() *co.Options {
			o := co.New()
			o.Provider = Filesystem
			o.Filesystem.CachePath = t.TempDir()
			return o
		}(),
	}
	require.NoError(t, l.Initialize())

	caches, err := LoadCachesFromConfig(l)
	require.NoError(t, err)
	require.Len(t, caches, 2)
	require.NoError(t, CloseCaches(caches))
}
