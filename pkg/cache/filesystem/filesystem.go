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

// Package filesystem is the filesystem implementation of the result cache.
//
// Each record is stored as two files named by the fingerprint: a .zip file
// holding the container bytes and a .meta file holding the CBOR-serialized
// metrics and creation timestamp. Lookups are direct existence checks, never
// scans. Writes land under temporary names and are moved into place with
// os.Rename, so a concurrent reader can never observe a partially written
// record. Concurrent writers for the same fingerprint race benignly:
// last-writer-wins, and records for a fingerprint are expected to have
// identical content.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docuforge/bundler/pkg/archive/metrics"
	"github.com/docuforge/bundler/pkg/cache"
	"github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"

	"github.com/fxamacker/cbor/v2"
)

const (
	dataExt = ".zip"
	metaExt = ".meta"
	tmpExt  = ".tmp"
)

// CacheClient implements the cache.Client interface
var _ cache.Client = &CacheClient{}

// CacheClient describes a Filesystem CacheClient
type CacheClient struct {
	Name   string
	Config *options.Options
}

// recordMeta is the sidecar metadata persisted next to the container bytes
type recordMeta struct {
	Metrics metrics.Snapshot `cbor:"1,keyasint"`
	Created time.Time        `cbor:"2,keyasint"`
}

func NewCache(name string, config *options.Options) *CacheClient {
	c := &CacheClient{
		Name:   name,
		Config: config,
	}
	return c
}

func (c *CacheClient) Close() error {
	return nil
}

// Connect verifies the cache path exists and is writeable
func (c *CacheClient) Connect() error {
	return makeDirectory(c.Config.Filesystem.CachePath)
}

func (c *CacheClient) Configuration() *options.Options {
	return c.Config
}

func (c *CacheClient) Remove(cacheKeys ...string) error {
	for _, cacheKey := range cacheKeys {
		dataFile, metaFile := c.fileNames(cacheKey)
		if err := os.Remove(dataFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := os.Remove(metaFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Store writes the record's container and metadata under temporary names,
// then renames both into place
func (c *CacheClient) Store(cacheKey string, rec *cache.Record) error {
	if cacheKey == "" {
		return errors.New("cacheKey required")
	}
	if rec == nil {
		return errors.New("record required")
	}
	dataFile, metaFile := c.fileNames(cacheKey)

	mb, err := cbor.Marshal(&recordMeta{Metrics: rec.Metrics, Created: rec.Created})
	if err != nil {
		return err
	}

	if err = writeAtomic(dataFile, rec.Container); err != nil {
		return err
	}
	// the meta file lands last; a record without one is invisible to Reap
	// but still retrievable, which is safe in both directions
	return writeAtomic(metaFile, mb)
}

// Retrieve reads the record for the cache key, reporting stale records as
// expired without deleting them
func (c *CacheClient) Retrieve(cacheKey string) (*cache.Record, status.LookupStatus, error) {
	dataFile, metaFile := c.fileNames(cacheKey)

	mb, err := os.ReadFile(metaFile)
	if err != nil {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	var meta recordMeta
	if err = cbor.Unmarshal(mb, &meta); err != nil {
		return nil, status.LookupStatusError, err
	}

	data, err := os.ReadFile(dataFile)
	if err != nil {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}

	rec := &cache.Record{Container: data, Metrics: meta.Metrics, Created: meta.Created}

	if !rec.Fresh(c.Config.MaxAge, time.Now()) {
		return nil, status.LookupStatusExpired, cache.ErrKNF
	}
	return rec, status.LookupStatusHit, nil
}

// Reap removes all records whose creation timestamp is older than the
// provided age, returning the count of records removed
func (c *CacheClient) Reap(olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(c.Config.Filesystem.CachePath)
	if err != nil {
		return 0, err
	}
	threshold := time.Now().Add(-olderThan)
	var removed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), metaExt) {
			continue
		}
		metaFile := filepath.Join(c.Config.Filesystem.CachePath, e.Name())
		mb, err := os.ReadFile(metaFile)
		if err != nil {
			continue
		}
		var meta recordMeta
		if err = cbor.Unmarshal(mb, &meta); err != nil || meta.Created.After(threshold) {
			continue
		}
		key := strings.TrimSuffix(e.Name(), metaExt)
		if err = c.Remove(key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (c *CacheClient) fileNames(cacheKey string) (string, string) {
	base := filepath.Join(
		c.Config.Filesystem.CachePath,
		strings.NewReplacer("/", "~1", "\\", "~2", "..", "~3", ".", "~4").Replace(cacheKey),
	)
	return base + dataExt, base + metaExt
}

func writeAtomic(path string, data []byte) error {
	tmp := path + tmpExt + "." + strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.WriteFile(tmp, data, os.FileMode(0o644)); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// makeDirectory creates a directory on the filesystem and returns the error in the event of a failure.
func makeDirectory(path string) error {
	err := os.MkdirAll(path, 0o755)
	if err == nil {
		// verify writability by attempting to touch a test file in the cache path
		tf := filepath.Join(path, ".test."+strconv.FormatInt(time.Now().Unix(), 10))
		err = os.WriteFile(tf, []byte(""), 0o600)
		if err == nil {
			os.Remove(tf)
		}
	}
	if err != nil {
		return fmt.Errorf("[%s] directory is not writeable by bundler: %w", path, err)
	}
	return nil
}
