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

package defaults

const (
	// DefaultCacheProvider is the default cache backend
	DefaultCacheProvider = "memory"
	// DefaultCachePath is the default filesystem cache directory
	DefaultCachePath = "/tmp/bundler/cache"
	// DefaultMaxAgeHours is the default record max age before a record is
	// considered stale
	DefaultMaxAgeHours = 24
	// DefaultReapIntervalSecs is how long the eviction sweeper sleeps
	// between sweeps
	DefaultReapIntervalSecs = 300
	// DefaultBBoltFile is the default bbolt database file
	DefaultBBoltFile = "bundler.db"
	// DefaultBBoltBucket is the default bbolt bucket name
	DefaultBBoltBucket = "bundler"
	// DefaultBadgerDirectory is the default badger data directory
	DefaultBadgerDirectory = "/tmp/bundler/badger"
	// DefaultRedisClientType is the default redis client type
	DefaultRedisClientType = "standard"
	// DefaultRedisProtocol is the default protocol for connecting to redis
	DefaultRedisProtocol = "tcp"
	// DefaultRedisEndpoint is the default redis endpoint
	DefaultRedisEndpoint = "redis:6379"
)
