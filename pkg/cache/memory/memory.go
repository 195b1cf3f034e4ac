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

// Package memory is the in-memory implementation of the result cache and
// uses a sync.Map to manage records
package memory

import (
	"time"

	"github.com/docuforge/bundler/pkg/cache"
	"github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"

	"sync"
)

// Cache implements the cache.Client interface
var _ cache.Client = &Cache{}

// Cache defines an in-memory cache client that conforms to the cache.Client
// interface
type Cache struct {
	Name   string
	Config *options.Options
	client sync.Map
}

// New returns a new memory cache as a cache.Client interface type
func New(name string, cfg *options.Options) *Cache {
	if cfg == nil {
		cfg = options.New()
	}
	c := &Cache{
		Name:   name,
		Config: cfg,
	}
	return c
}

func (c *Cache) Remove(cacheKeys ...string) error {
	for _, k := range cacheKeys {
		c.client.Delete(k)
	}
	return nil
}

func (c *Cache) Close() error {
	c.client.Clear()
	return nil
}

// Connect initializes the Cache
func (c *Cache) Connect() error {
	return nil
}

func (c *Cache) Configuration() *options.Options {
	return c.Config
}

// Store places a record in the cache using the specified key
func (c *Cache) Store(cacheKey string, rec *cache.Record) error {
	c.client.Store(cacheKey, rec)
	return nil
}

// Retrieve looks up a record in the cache, reporting stale records as
// expired without deleting them
func (c *Cache) Retrieve(cacheKey string) (*cache.Record, status.LookupStatus, error) {
	o, ok := c.client.Load(cacheKey)
	if !ok {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	rec := o.(*cache.Record)
	if !rec.Fresh(c.Config.MaxAge, time.Now()) {
		return nil, status.LookupStatusExpired, cache.ErrKNF
	}
	return rec, status.LookupStatusHit, nil
}

// Reap removes all records older than the provided age
func (c *Cache) Reap(olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	threshold := time.Now().Add(-olderThan)
	var removed int
	c.client.Range(func(k, v any) bool {
		if rec, ok := v.(*cache.Record); ok && rec.Created.Before(threshold) {
			c.client.Delete(k)
			removed++
		}
		return true
	})
	return removed, nil
}
