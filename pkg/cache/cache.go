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

// Package cache defines the archive result cache interface and provides
// general cache functionality
package cache

import (
	"time"

	"github.com/docuforge/bundler/pkg/archive/metrics"
	"github.com/docuforge/bundler/pkg/cache/options"
	"github.com/docuforge/bundler/pkg/cache/status"
	"github.com/docuforge/bundler/pkg/errors"

	"github.com/fxamacker/cbor/v2"
)

// ErrKNF represents the error "key not found in cache"
var ErrKNF = errors.ErrKNF

// Client is the interface for the supported cache store backends.
// When making new cache backends, Retrieve() must return an error on cache
// miss, and a stale record must be reported as status.LookupStatusExpired
// rather than actively deleted (eviction is a separate Reap sweep).
type Client interface {
	Connect() error
	Store(cacheKey string, rec *Record) error
	Retrieve(cacheKey string) (*Record, status.LookupStatus, error)
	Remove(cacheKeys ...string) error
	Reap(olderThan time.Duration) (int, error)
	Close() error
	Configuration() *options.Options
}

// Lookup is a map of Clients keyed by cache name
type Lookup map[string]Client

// Record pairs a produced container with the metrics captured when it was
// built. Records are immutable once written.
type Record struct {
	// Container holds the compressed container bytes
	Container []byte `cbor:"1,keyasint"`
	// Metrics is the build metrics snapshot captured with the container
	Metrics metrics.Snapshot `cbor:"2,keyasint"`
	// Created is the record creation timestamp used for staleness checks
	Created time.Time `cbor:"3,keyasint"`
}

// Bytes returns the CBOR serialization of the Record
func (r *Record) Bytes() ([]byte, error) {
	return cbor.Marshal(r)
}

// RecordFromBytes returns a Record deserialized from the provided CBOR bytes
func RecordFromBytes(b []byte) (*Record, error) {
	r := &Record{}
	if err := cbor.Unmarshal(b, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Fresh returns true if the record's age is within maxAge as of now.
// A non-positive maxAge disables staleness checking.
func (r *Record) Fresh(maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return true
	}
	return now.Sub(r.Created) <= maxAge
}
