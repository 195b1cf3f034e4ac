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

package options

import (
	"errors"
	"strings"
	"time"

	badger "github.com/docuforge/bundler/pkg/cache/badger/options"
	bbolt "github.com/docuforge/bundler/pkg/cache/bbolt/options"
	filesystem "github.com/docuforge/bundler/pkg/cache/filesystem/options"
	d "github.com/docuforge/bundler/pkg/cache/options/defaults"
	redis "github.com/docuforge/bundler/pkg/cache/redis/options"
)

// Lookup is a map of Options keyed by cache name
type Lookup map[string]*Options

var ErrInvalidName = errors.New("invalid cache name")

// Options is a collection of defining the cache store behavior
type Options struct {
	// Name is the Name of the cache, taken from the Key in the Caches map
	Name string `yaml:"-"`
	// Provider represents the type of cache to use:
	// "memory", "filesystem", "bbolt", "badger", or "redis"
	Provider string `yaml:"provider,omitempty"`
	// MaxAgeHours is the record age in hours beyond which a record is
	// considered stale; 0 assumes the default, -1 disables staleness
	MaxAgeHours int `yaml:"max_age_hours,omitempty"`
	// ReapIntervalSecs defines how long the eviction sweeper sleeps between
	// sweeps; -1 disables the background sweeper
	ReapIntervalSecs int `yaml:"reap_interval_secs,omitempty"`
	// Filesystem provides options for filesystem caching
	Filesystem *filesystem.Options `yaml:"filesystem,omitempty"`
	// BBolt provides options for bbolt caching
	BBolt *bbolt.Options `yaml:"bbolt,omitempty"`
	// Badger provides options for badger caching
	Badger *badger.Options `yaml:"badger,omitempty"`
	// Redis provides options for redis caching
	Redis *redis.Options `yaml:"redis,omitempty"`

	//  Synthetic Values

	// MaxAge is the duration form of MaxAgeHours, populated at Initialize
	MaxAge time.Duration `yaml:"-"`
	// ReapInterval is the duration form of ReapIntervalSecs, populated at
	// Initialize
	ReapInterval time.Duration `yaml:"-"`
}

// New will return a pointer to a cache Options with the default settings
func New() *Options {
	o := &Options{
		Provider:         d.DefaultCacheProvider,
		MaxAgeHours:      d.DefaultMaxAgeHours,
		ReapIntervalSecs: d.DefaultReapIntervalSecs,
		Filesystem:       filesystem.New(),
		BBolt:            bbolt.New(),
		Badger:           badger.New(),
		Redis:            redis.New(),
	}
	o.syntheticValues()
	return o
}

// Clone returns an exact copy of the subject Options
func (o *Options) Clone() *Options {
	out := New()
	out.Name = o.Name
	out.Provider = o.Provider
	out.MaxAgeHours = o.MaxAgeHours
	out.ReapIntervalSecs = o.ReapIntervalSecs
	out.MaxAge = o.MaxAge
	out.ReapInterval = o.ReapInterval

	out.Filesystem.CachePath = o.Filesystem.CachePath

	out.BBolt.Bucket = o.BBolt.Bucket
	out.BBolt.Filename = o.BBolt.Filename

	out.Badger.Directory = o.Badger.Directory
	out.Badger.ValueDirectory = o.Badger.ValueDirectory

	out.Redis.ClientType = o.Redis.ClientType
	out.Redis.Protocol = o.Redis.Protocol
	out.Redis.Endpoint = o.Redis.Endpoint
	out.Redis.Endpoints = o.Redis.Endpoints
	out.Redis.SentinelMaster = o.Redis.SentinelMaster
	out.Redis.Password = o.Redis.Password
	out.Redis.DB = o.Redis.DB

	return out
}

// Initialize sets up the cache Options with default values and overlays any
// values that were set during YAML unmarshaling
func (o *Options) Initialize(name string) error {
	if name == "" || name == "none" {
		return ErrInvalidName
	}
	o.Name = name
	o.Provider = strings.ToLower(o.Provider)
	if o.Provider == "" {
		o.Provider = d.DefaultCacheProvider
	}
	if o.MaxAgeHours == 0 {
		o.MaxAgeHours = d.DefaultMaxAgeHours
	}
	if o.ReapIntervalSecs == 0 {
		o.ReapIntervalSecs = d.DefaultReapIntervalSecs
	}
	if o.Filesystem == nil {
		o.Filesystem = filesystem.New()
	}
	if o.BBolt == nil {
		o.BBolt = bbolt.New()
	}
	if o.Badger == nil {
		o.Badger = badger.New()
	}
	if o.Redis == nil {
		o.Redis = redis.New()
	}
	o.syntheticValues()
	return nil
}

func (o *Options) syntheticValues() {
	if o.MaxAgeHours > 0 {
		o.MaxAge = time.Duration(o.MaxAgeHours) * time.Hour
	} else {
		o.MaxAge = 0
	}
	if o.ReapIntervalSecs > 0 {
		o.ReapInterval = time.Duration(o.ReapIntervalSecs) * time.Second
	} else {
		o.ReapInterval = 0
	}
}

// Initialize initializes all cache options in the lookup with default values
// and overlays any values that were set during YAML unmarshaling
func (l Lookup) Initialize() error {
	for k, v := range l {
		if err := v.Initialize(k); err != nil {
			return err
		}
	}
	return nil
}
