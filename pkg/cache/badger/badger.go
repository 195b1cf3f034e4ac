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

// Package badger is the BadgerDB implementation of the result cache
package badger

import (
	"time"

	"github.com/docuforge/bundler/pkg/cache"
	"github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"

	"github.com/dgraph-io/badger/v4"
)

// CacheClient implements the cache.Client interface
var _ cache.Client = &CacheClient{}

// CacheClient describes a Badger CacheClient
type CacheClient struct {
	Name   string
	Config *options.Options
	dbh    *badger.DB
}

// New returns a new badger cache as a cache.Client interface type
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

// Connect opens the configured Badger key-value store
func (c *CacheClient) Connect() error {
	opts := badger.DefaultOptions(c.Config.Badger.Directory)
	opts.ValueDir = c.Config.Badger.ValueDirectory
	opts.Logger = nil

	var err error
	c.dbh, err = badger.Open(opts)
	return err
}

func (c *CacheClient) Close() error {
	return c.dbh.Close()
}

func (c *CacheClient) Configuration() *options.Options {
	return c.Config
}

func (c *CacheClient) Remove(cacheKeys ...string) error {
	return c.dbh.Update(func(txn *badger.Txn) error {
		for _, cacheKey := range cacheKeys {
			if err := txn.Delete([]byte(cacheKey)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Store places the record into the Badger store using the provided key.
// Badger's native entry TTL carries the configured max age.
func (c *CacheClient) Store(cacheKey string, rec *cache.Record) error {
	b, err := rec.Bytes()
	if err != nil {
		return err
	}
	return c.dbh.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(cacheKey), b)
		if c.Config.MaxAge > 0 {
			e = e.WithTTL(c.Config.MaxAge)
		}
		return txn.SetEntry(e)
	})
}

// Retrieve gets a record from the Badger store using the provided key.
// Because Badger manages expiration internally, an expired record surfaces
// as a key miss.
func (c *CacheClient) Retrieve(cacheKey string) (*cache.Record, status.LookupStatus, error) {
	var data []byte
	err := c.dbh.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	if err != nil {
		return nil, status.LookupStatusError, err
	}

	rec, err := cache.RecordFromBytes(data)
	if err != nil {
		return nil, status.LookupStatusError, err
	}
	return rec, status.LookupStatusHit, nil
}

// Reap is a no-op for Badger, which expires records natively via entry TTL
func (c *CacheClient) Reap(_ time.Duration) (int, error) {
	return 0, nil
}
