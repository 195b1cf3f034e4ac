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

package badger

import (
	"testing"
	"time"

	"github.com/docuforge/bundler/pkg/cache"
	co "github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"

	"github.com/stretchr/testify/require"
)

const cacheKey = "cacheKey"

func newCache(t *testing.T) *CacheClient {
	dir := t.TempDir()
	cfg := co.New()
	cfg.Provider = "badger"
	cfg.Badger.Directory = dir
	cfg.Badger.ValueDirectory = dir
	bc := New(t.Name(), cfg)
	require.NoError(t, bc.Connect())
	t.Cleanup(func() { bc.Close() })
	return bc
}

func TestStoreRetrieve(t *testing.T) {
	bc := newCache(t)
	rec := &cache.Record{Container: []byte("data"), Created: time.Now()}
	require.NoError(t, bc.Store(cacheKey, rec))

	got, ls, err := bc.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, ls)
	require.Equal(t, []byte("data"), got.Container)
}

func TestRetrieveKeyMiss(t *testing.T) {
	bc := newCache(t)
	_, ls, err := bc.Retrieve("absent")
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, ls)
}

func TestRemove(t *testing.T) {
	bc := newCache(t)
	require.NoError(t, bc.Store(cacheKey,
		&cache.Record{Container: []byte("data"), Created: time.Now()}))
	require.NoError(t, bc.Remove(cacheKey))
	_, _, err := bc.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
}

func TestReapIsNoop(t *testing.T) {
	bc := newCache(t)
	removed, err := bc.Reap(time.Hour)
	require.NoError(t, err)
	require.Zero(t, removed)
}
