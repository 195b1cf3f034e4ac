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

// Package bbolt is the bbolt implementation of the result cache
package bbolt

import (
	"fmt"
	"time"

	"github.com/docuforge/bundler/pkg/cache"
	"github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"

	"go.etcd.io/bbolt"
)

// CacheClient implements the cache.Client interface
var _ cache.Client = &CacheClient{}

// CacheClient describes a BBolt CacheClient
type CacheClient struct {
	Name   string
	Config *options.Options
	dbh    *bbolt.DB
}

// New returns a new bbolt cache as a cache.Client interface type
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

func (c *CacheClient) Close() error {
	if c.dbh == nil {
		return nil
	}
	return c.dbh.Close()
}

// Connect opens the configured bbolt database and ensures the bucket exists
func (c *CacheClient) Connect() error {
	var err error
	c.dbh, err = bbolt.Open(c.Config.BBolt.Filename, 0o644, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}

	return c.dbh.Update(func(tx *bbolt.Tx) error {
		_, err2 := tx.CreateBucketIfNotExists([]byte(c.Config.BBolt.Bucket))
		if err2 != nil {
			return fmt.Errorf("create bucket: %w", err2)
		}
		return nil
	})
}

func (c *CacheClient) Configuration() *options.Options {
	return c.Config
}

// Store places the record into the bbolt bucket using the provided key
func (c *CacheClient) Store(cacheKey string, rec *cache.Record) error {
	b, err := rec.Bytes()
	if err != nil {
		return err
	}
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(c.Config.BBolt.Bucket)).Put([]byte(cacheKey), b)
	})
}

// Retrieve gets a record from the bbolt bucket using the provided key,
// reporting stale records as expired without deleting them
func (c *CacheClient) Retrieve(cacheKey string) (*cache.Record, status.LookupStatus, error) {
	var data []byte
	err := c.dbh.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.BBolt.Bucket)).Get([]byte(cacheKey))
		if b == nil {
			return cache.ErrKNF
		}
		data = make([]byte, len(b))
		copy(data, b)
		return nil
	})
	if err != nil {
		return nil, status.LookupStatusKeyMiss, err
	}

	rec, err := cache.RecordFromBytes(data)
	if err != nil {
		return nil, status.LookupStatusError, err
	}
	if !rec.Fresh(c.Config.MaxAge, time.Now()) {
		return nil, status.LookupStatusExpired, cache.ErrKNF
	}
	return rec, status.LookupStatusHit, nil
}

func (c *CacheClient) Remove(cacheKeys ...string) error {
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.BBolt.Bucket))
		for _, cacheKey := range cacheKeys {
			if err := b.Delete([]byte(cacheKey)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reap removes all records older than the provided age
func (c *CacheClient) Reap(olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	threshold := time.Now().Add(-olderThan)
	var stale [][]byte
	err := c.dbh.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(c.Config.BBolt.Bucket)).ForEach(func(k, v []byte) error {
			rec, err := cache.RecordFromBytes(v)
			if err != nil {
				// an undecodable record is removed as stale
				stale = append(stale, append([]byte(nil), k...))
				return nil
			}
			if rec.Created.Before(threshold) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	err = c.dbh.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.BBolt.Bucket))
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}
