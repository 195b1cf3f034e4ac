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

// Package redis is the redis implementation of the result cache and supports
// Standalone, Sentinel and Cluster
package redis

import (
	"time"

	"github.com/docuforge/bundler/pkg/cache"
	"github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"

	"github.com/go-redis/redis"
)

// CacheClient implements the cache.Client interface
var _ cache.Client = &CacheClient{}

// CacheClient represents a redis cache client that conforms to the
// cache.Client interface
type CacheClient struct {
	Name   string
	Config *options.Options
	client redis.Cmdable
	closer func() error
}

// New returns a new redis cache as a cache.Client interface type
func New(name string, cfg *options.Options) *CacheClient {
	if cfg == nil {
		cfg = options.New()
	}
	c := &CacheClient{
		Name:   name,
		Config: cfg,
	}
	return c
}

// Connect connects to the configured Redis endpoint
func (c *CacheClient) Connect() error {
	switch c.Config.Redis.ClientType {
	case "sentinel":
		client := redis.NewFailoverClient(c.sentinelOpts())
		c.closer = client.Close
		c.client = client
	case "cluster":
		client := redis.NewClusterClient(c.clusterOpts())
		c.closer = client.Close
		c.client = client
	default:
		client := redis.NewClient(c.clientOpts())
		c.closer = client.Close
		c.client = client
	}
	return c.client.Ping().Err()
}

func (c *CacheClient) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *CacheClient) Configuration() *options.Options {
	return c.Config
}

func (c *CacheClient) Remove(cacheKeys ...string) error {
	return c.client.Del(cacheKeys...).Err()
}

// Store places the record into the Redis cache using the provided key.
// Redis's native key TTL carries the configured max age.
func (c *CacheClient) Store(cacheKey string, rec *cache.Record) error {
	b, err := rec.Bytes()
	if err != nil {
		return err
	}
	var ttl time.Duration
	if c.Config.MaxAge > 0 {
		ttl = c.Config.MaxAge
	}
	return c.client.Set(cacheKey, b, ttl).Err()
}

// Retrieve gets a record from the Redis cache using the provided key.
// Because Redis manages expiration internally, an expired record surfaces as
// a key miss.
func (c *CacheClient) Retrieve(cacheKey string) (*cache.Record, status.LookupStatus, error) {
	b, err := c.client.Get(cacheKey).Bytes()
	if err == redis.Nil {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	if err != nil {
		return nil, status.LookupStatusError, err
	}
	rec, err := cache.RecordFromBytes(b)
	if err != nil {
		return nil, status.LookupStatusError, err
	}
	return rec, status.LookupStatusHit, nil
}

// Reap is a no-op for Redis, which expires records natively via key TTL
func (c *CacheClient) Reap(_ time.Duration) (int, error) {
	return 0, nil
}

func (c *CacheClient) clientOpts() *redis.Options {
	o := &redis.Options{
		Network:  c.Config.Redis.Protocol,
		Addr:     c.Config.Redis.Endpoint,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
	return o
}

func (c *CacheClient) sentinelOpts() *redis.FailoverOptions {
	o := &redis.FailoverOptions{
		MasterName:    c.Config.Redis.SentinelMaster,
		SentinelAddrs: c.Config.Redis.Endpoints,
		Password:      c.Config.Redis.Password,
		DB:            c.Config.Redis.DB,
	}
	return o
}

func (c *CacheClient) clusterOpts() *redis.ClusterOptions {
	o := &redis.ClusterOptions{
		Addrs:    c.Config.Redis.Endpoints,
		Password: c.Config.Redis.Password,
	}
	return o
}
