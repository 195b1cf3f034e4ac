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

// Package registry handles the construction of cache store backends from
// their options, and runs the background eviction sweeper
package registry

import (
	"sync"
	"time"

	"github.com/docuforge/bundler/pkg/cache"
	"github.com/docuforge/bundler/pkg/cache/badger"
	"github.com/docuforge/bundler/pkg/cache/bbolt"
	"github.com/docuforge/bundler/pkg/cache/filesystem"
	"github.com/docuforge/bundler/pkg/cache/memory"
	"github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/redis"
	"github.com/docuforge/bundler/pkg/observability/logging"
	"github.com/docuforge/bundler/pkg/observability/logging/logger"
	"github.com/docuforge/bundler/pkg/observability/metrics"
)

// Cache provider names
const (
	Memory     = "memory"
	Filesystem = "filesystem"
	BBolt      = "bbolt"
	Badger     = "badger"
	Redis      = "redis"
)

// LoadCachesFromConfig iterates the cache options lookup and connects each
// configured cache
func LoadCachesFromConfig(l options.Lookup) (cache.Lookup, error) {
	caches := make(cache.Lookup)
	for k, v := range l {
		c, err := NewCache(k, v)
		if err != nil {
			CloseCaches(caches)
			return nil, err
		}
		caches[k] = c
	}
	return caches, nil
}

// CloseCaches iterates the set of caches and closes each
func CloseCaches(caches cache.Lookup) error {
	for _, c := range caches {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}

// NewCache returns a connected Cache backend based on the provided options.
// When the options carry a positive reap interval, the returned client runs
// a background eviction sweep until it is closed.
func NewCache(cacheName string, cfg *options.Options) (cache.Client, error) {
	if cfg == nil {
		cfg = options.New()
	}

	var c cache.Client
	switch cfg.Provider {
	case Filesystem:
		c = filesystem.NewCache(cacheName, cfg)
	case Redis:
		c = redis.New(cacheName, cfg)
	case BBolt:
		c = bbolt.New(cacheName, cfg)
	case Badger:
		c = badger.New(cacheName, cfg)
	default:
		// Default to MemoryCache
		c = memory.New(cacheName, cfg)
	}

	if err := c.Connect(); err != nil {
		return nil, err
	}

	if cfg.ReapInterval > 0 && cfg.MaxAge > 0 {
		c = newReapingClient(cacheName, c, cfg.MaxAge, cfg.ReapInterval)
	}
	return c, nil
}

// reapingClient wraps a cache.Client with a background eviction sweeper
type reapingClient struct {
	cache.Client

	name string
	quit chan struct{}
	once sync.Once
}

func newReapingClient(name string, c cache.Client, maxAge,
	interval time.Duration) *reapingClient {
	r := &reapingClient{
		Client: c,
		name:   name,
		quit:   make(chan struct{}),
	}
	go r.reaper(maxAge, interval)
	return r
}

func (r *reapingClient) reaper(maxAge, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-r.quit:
			return
		case <-t.C:
			removed, err := r.Reap(maxAge)
			if err != nil {
				logger.Warn("cache reap failed",
					logging.Pairs{"cacheName": r.name, "error": err})
				metrics.CacheEvents.WithLabelValues(r.name, "error").Inc()
				continue
			}
			if removed > 0 {
				logger.Debug("cache reap",
					logging.Pairs{"cacheName": r.name, "removed": removed})
				metrics.CacheEvents.WithLabelValues(r.name, "reap").Add(float64(removed))
			}
		}
	}
}

func (r *reapingClient) Close() error {
	r.once.Do(func() { close(r.quit) })
	return r.Client.Close()
}
