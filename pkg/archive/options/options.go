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
	"fmt"

	guard "github.com/docuforge/bundler/pkg/guard/options"
	"github.com/docuforge/bundler/pkg/retry"
)

const (
	// DefaultCompressionLevel is the default deflate level for containers
	DefaultCompressionLevel = 6
	// DefaultMaxFileSizeMB is the default per-item size ceiling
	DefaultMaxFileSizeMB = 100
	// DefaultMaxTotalSizeMB is the default aggregate size ceiling
	DefaultMaxTotalSizeMB = 500
	// DefaultMaxMemoryMB is the default process memory ceiling
	DefaultMaxMemoryMB = 512
	// DefaultStreamingThresholdMB is the default size above which an entry
	// is spooled rather than held fully in memory
	DefaultStreamingThresholdMB = 10
	// DefaultChunkSizeBytes is the default spool copy chunk size
	DefaultChunkSizeBytes = 64 * 1024
	// DefaultMaxRetries is the default number of build attempts
	DefaultMaxRetries = 3
	// DefaultCacheName is the name of the cache the builder consults when
	// none is configured
	DefaultCacheName = "default"

	mb = int64(1024 * 1024)
)

// Options is a collection of configurations defining the archive builder
// behavior. Options are established once per build request and are not
// mutated by the builder.
type Options struct {
	// CompressionLevel is the deflate compression level (0-9, clamped);
	// level 0 stores entries without compression
	CompressionLevel int `yaml:"compression_level"`
	// MaxFileSizeMB is the per-item size ceiling in megabytes
	MaxFileSizeMB int64 `yaml:"max_file_size_mb,omitempty"`
	// MaxTotalSizeMB is the aggregate size ceiling in megabytes
	MaxTotalSizeMB int64 `yaml:"max_total_size_mb,omitempty"`
	// MaxMemoryMB is the process memory ceiling in megabytes
	MaxMemoryMB int64 `yaml:"max_memory_mb,omitempty"`
	// StreamingThresholdMB is the size in megabytes above which an entry is
	// routed through a spool file
	StreamingThresholdMB int64 `yaml:"streaming_threshold_mb,omitempty"`
	// ChunkSizeBytes is the spool copy chunk size in bytes
	ChunkSizeBytes int64 `yaml:"chunk_size_bytes,omitempty"`
	// CacheEnabled determines whether build results are cached by
	// input-set fingerprint
	CacheEnabled bool `yaml:"cache_enabled"`
	// CacheName names the cache store the builder consults
	CacheName string `yaml:"cache_name,omitempty"`
	// VerifyIntegrity determines whether finished and cached containers
	// are structurally verified before being returned
	VerifyIntegrity bool `yaml:"verify_integrity"`
	// MaxRetries is the maximum number of build attempts (>= 1)
	MaxRetries int `yaml:"max_retries,omitempty"`
	// Retry configures the backoff between build attempts
	Retry retry.Policy `yaml:"retry,omitempty"`
	// Guard configures the resource guard consulted before each attempt
	Guard *guard.Options `yaml:"resource_guard,omitempty"`

	//  Synthetic Values

	// MaxFileSizeBytes is the byte form of MaxFileSizeMB
	MaxFileSizeBytes int64 `yaml:"-"`
	// MaxTotalSizeBytes is the byte form of MaxTotalSizeMB
	MaxTotalSizeBytes int64 `yaml:"-"`
	// MaxMemoryBytes is the byte form of MaxMemoryMB
	MaxMemoryBytes int64 `yaml:"-"`
	// StreamingThresholdBytes is the byte form of StreamingThresholdMB
	StreamingThresholdBytes int64 `yaml:"-"`
}

// New returns a pointer to an archive Options with default settings
func New() *Options {
	o := &Options{
		CompressionLevel:     DefaultCompressionLevel,
		MaxFileSizeMB:        DefaultMaxFileSizeMB,
		MaxTotalSizeMB:       DefaultMaxTotalSizeMB,
		MaxMemoryMB:          DefaultMaxMemoryMB,
		StreamingThresholdMB: DefaultStreamingThresholdMB,
		ChunkSizeBytes:       DefaultChunkSizeBytes,
		CacheEnabled:         true,
		CacheName:            DefaultCacheName,
		VerifyIntegrity:      true,
		MaxRetries:           DefaultMaxRetries,
		Retry:                retry.New(),
		Guard:                guard.New(),
	}
	o.syntheticValues()
	return o
}

// Clone returns an exact copy of the subject Options
func (o *Options) Clone() *Options {
	out := *o
	out.Guard = o.Guard.Clone()
	return &out
}

// Initialize overlays default values onto any unset fields and computes the
// synthetic byte values
func (o *Options) Initialize() error {
	if o.CompressionLevel < 0 {
		o.CompressionLevel = 0
	} else if o.CompressionLevel > 9 {
		o.CompressionLevel = 9
	}
	if o.MaxFileSizeMB <= 0 {
		o.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if o.MaxTotalSizeMB <= 0 {
		o.MaxTotalSizeMB = DefaultMaxTotalSizeMB
	}
	if o.MaxMemoryMB <= 0 {
		o.MaxMemoryMB = DefaultMaxMemoryMB
	}
	if o.StreamingThresholdMB <= 0 {
		o.StreamingThresholdMB = DefaultStreamingThresholdMB
	}
	if o.ChunkSizeBytes <= 0 {
		o.ChunkSizeBytes = DefaultChunkSizeBytes
	}
	if o.CacheName == "" {
		o.CacheName = DefaultCacheName
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Guard == nil {
		o.Guard = guard.New()
	}
	o.Guard.Initialize()
	o.Retry.Initialize()
	o.syntheticValues()
	return o.Validate()
}

// Validate returns an error if the Options are invalid
func (o *Options) Validate() error {
	if o.MaxFileSizeBytes > o.MaxTotalSizeBytes {
		return fmt.Errorf("max_file_size_mb (%d) cannot exceed max_total_size_mb (%d)",
			o.MaxFileSizeMB, o.MaxTotalSizeMB)
	}
	if o.ChunkSizeBytes > o.StreamingThresholdBytes {
		return fmt.Errorf("chunk_size_bytes (%d) cannot exceed the streaming threshold (%d)",
			o.ChunkSizeBytes, o.StreamingThresholdBytes)
	}
	return o.Guard.Validate()
}

func (o *Options) syntheticValues() {
	o.MaxFileSizeBytes = o.MaxFileSizeMB * mb
	o.MaxTotalSizeBytes = o.MaxTotalSizeMB * mb
	o.MaxMemoryBytes = o.MaxMemoryMB * mb
	o.StreamingThresholdBytes = o.StreamingThresholdMB * mb
}
