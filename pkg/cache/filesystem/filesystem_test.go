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

package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docuforge/bundler/pkg/archive/metrics"
	"github.com/docuforge/bundler/pkg/cache"
	co "github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"

	"github.com/stretchr/testify/require"
)

const cacheProvider = "filesystem"
const cacheKey = "d41d8cd98f00b204e9800998ecf8427e"

func newCacheConfig(t *testing.T) *co.Options {
	cfg := co.New()
	cfg.Provider = cacheProvider
	cfg.Filesystem.CachePath = t.TempDir() + "/cache/" + cacheProvider
	return cfg
}

func testRecord(created time.Time) *cache.Record {
	return &cache.Record{
		Container: []byte("PK\x03\x04data"),
		Metrics:   metrics.Snapshot{TotalFiles: 3, TotalBytes: 60},
		Created:   created,
	}
}

func TestConnect(t *testing.T) {
	fc := NewCache(t.Name(), newCacheConfig(t))
	require.NoError(t, fc.Connect())
}

func TestConnectFailed(t *testing.T) {
	// a regular file where a directory is required
	f := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))

	cfg := newCacheConfig(t)
	cfg.Filesystem.CachePath = filepath.Join(f, "cache")
	fc := NewCache(t.Name(), cfg)
	require.Error(t, fc.Connect())
}

func TestStoreRetrieve(t *testing.T) {
	fc := NewCache(t.Name(), newCacheConfig(t))
	require.NoError(t, fc.Connect())

	rec := testRecord(time.Now())
	require.NoError(t, fc.Store(cacheKey, rec))

	got, ls, err := fc.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, ls)
	require.Equal(t, rec.Container, got.Container)
	require.Equal(t, rec.Metrics.TotalFiles, got.Metrics.TotalFiles)
	require.WithinDuration(t, rec.Created, got.Created, time.Second)
}

func TestRetrieveKeyMiss(t *testing.T) {
	fc := NewCache(t.Name(), newCacheConfig(t))
	require.NoError(t, fc.Connect())

	_, ls, err := fc.Retrieve("absent")
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, ls)
}

func TestRetrieveExpired(t *testing.T) {
	cfg := newCacheConfig(t)
	fc := NewCache(t.Name(), cfg)
	require.NoError(t, fc.Connect())

	stale := testRecord(time.Now().Add(-cfg.MaxAge - time.Hour))
	require.NoError(t, fc.Store(cacheKey, stale))

	_, ls, err := fc.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusExpired, ls)

	// a stale record is not deleted on lookup
	_, err = os.Stat(filepath.Join(cfg.Filesystem.CachePath, cacheKey+".zip"))
	require.NoError(t, err)
}

func TestRemove(t *testing.T) {
	fc := NewCache(t.Name(), newCacheConfig(t))
	require.NoError(t, fc.Connect())

	require.NoError(t, fc.Store(cacheKey, testRecord(time.Now())))
	require.NoError(t, fc.Remove(cacheKey))

	_, ls, err := fc.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, ls)

	// removing an absent key is not an error
	require.NoError(t, fc.Remove("absent"))
}

func TestReap(t *testing.T) {
	cfg := newCacheConfig(t)
	fc := NewCache(t.Name(), cfg)
	require.NoError(t, fc.Connect())

	require.NoError(t, fc.Store("stale", testRecord(time.Now().Add(-48*time.Hour))))
	require.NoError(t, fc.Store("fresh", testRecord(time.Now())))

	removed, err := fc.Reap(cfg.MaxAge)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, _, err = fc.Retrieve("stale")
	require.ErrorIs(t, err, cache.ErrKNF)
	_, _, err = fc.Retrieve("fresh")
	require.NoError(t, err)
}

func TestStoreLeavesNoTempFiles(t *testing.T) {
	cfg := newCacheConfig(t)
	fc := NewCache(t.Name(), cfg)
	require.NoError(t, fc.Connect())
	require.NoError(t, fc.Store(cacheKey, testRecord(time.Now())))

	entries, err := os.ReadDir(cfg.Filesystem.CachePath)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".tmp")
	}
}

func TestStoreInvalidArgs(t *testing.T) {
	fc := NewCache(t.Name(), newCacheConfig(t))
	require.NoError(t, fc.Connect())
	require.Error(t, fc.Store("", testRecord(time.Now())))
	require.Error(t, fc.Store(cacheKey, nil))
}
