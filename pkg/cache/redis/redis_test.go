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

package redis

import (
	"testing"
	"time"

	"github.com/docuforge/bundler/pkg/cache"
	co "github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"

	"github.com/alicebob/miniredis"
	"github.com/stretchr/testify/require"
)

const cacheKey = "cacheKey"

func newCache(t *testing.T) (*CacheClient, *miniredis.Miniredis) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	cfg := co.New()
	cfg.Provider = "redis"
	cfg.Redis.Endpoint = s.Addr()
	rc := New(t.Name(), cfg)
	require.NoError(t, rc.Connect())
	t.Cleanup(func() { rc.Close() })
	return rc, s
}

func TestStoreRetrieve(t *testing.T) {
	rc, _ := newCache(t)
	rec := &cache.Record{Container: []byte("data"), Created: time.Now()}
	require.NoError(t, rc.Store(cacheKey, rec))

	got, ls, err := rc.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, ls)
	require.Equal(t, []byte("data"), got.Container)
}

func TestRetrieveKeyMiss(t *testing.T) {
	rc, _ := newCache(t)
	_, ls, err := rc.Retrieve("absent")
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, ls)
}

func TestExpiresViaTTL(t *testing.T) {
	rc, s := newCache(t)
	require.NoError(t, rc.Store(cacheKey,
		&cache.Record{Container: []byte("data"), Created: time.Now()}))

	// advance the server past the configured max age
	s.FastForward(rc.Config.MaxAge + time.Minute)

	_, ls, err := rc.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, ls)
}

func TestRemove(t *testing.T) {
	rc, _ := newCache(t)
	require.NoError(t, rc.Store(cacheKey,
		&cache.Record{Container: []byte("data"), Created: time.Now()}))
	require.NoError(t, rc.Remove(cacheKey))
	_, _, err := rc.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
}

func TestReapIsNoop(t *testing.T) {
	rc, _ := newCache(t)
	removed, err := rc.Reap(time.Hour)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestConnectFailed(t *testing.T) {
	cfg := co.New()
	cfg.Redis.Endpoint = "127.0.0.1:0"
	rc := New(t.Name(), cfg)
	require.Error(t, rc.Connect())
}
