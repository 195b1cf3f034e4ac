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

// Package config provides bundler configuration abilities, including parsing
// configuration files, default values and validation
package config

import (
	"fmt"
	"os"

	archive "github.com/docuforge/bundler/pkg/archive/options"
	cache "github.com/docuforge/bundler/pkg/cache/options"
	logging "github.com/docuforge/bundler/pkg/observability/logging/options"

	"gopkg.in/yaml.v3"
)

// Config is the main bundler configuration object
type Config struct {
	// Main is the primary process configuration
	Main *MainConfig `yaml:"main,omitempty"`
	// Logging provides the logging configuration
	Logging *logging.Options `yaml:"logging,omitempty"`
	// Archive provides the archive builder configuration
	Archive *archive.Options `yaml:"archive,omitempty"`
	// Caches is a map of result cache configurations keyed by cache name
	Caches cache.Lookup `yaml:"caches,omitempty"`
}

// MainConfig is a collection of general process configurations
type MainConfig struct {
	// InstanceID distinguishes multiple bundler processes writing logs or
	// caches on the same host
	InstanceID int `yaml:"instance_id,omitempty"`
}

// DefaultCacheName is the name of the cache configured when no caches
// section is provided
const DefaultCacheName = archive.DefaultCacheName

// NewConfig returns a Config with default values
func NewConfig() *Config {
	return &Config{
		Main:    &MainConfig{},
		Logging: logging.New(),
		Archive: archive.New(),
		Caches: cache.Lookup{
			DefaultCacheName: cache.New(),
		},
	}
}

// Load reads the YAML file at path over a default Config and initializes the
// result
func Load(path string) (*Config, error) {
	c := NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("could not parse config file [%s]: %w", path, err)
	}
	if err = c.Initialize(); err != nil {
		return nil, err
	}
	return c, nil
}

// Initialize overlays default values onto any unset sections and validates
// cross-section references
func (c *Config) Initialize() error {
	if c.Main == nil {
		c.Main = &MainConfig{}
	}
	if c.Logging == nil {
		c.Logging = logging.New()
	}
	if c.Archive == nil {
		c.Archive = archive.New()
	}
	if len(c.Caches) == 0 {
		c.Caches = cache.Lookup{DefaultCacheName: cache.New()}
	}
	if err := c.Archive.Initialize(); err != nil {
		return err
	}
	if err := c.Caches.Initialize(); err != nil {
		return err
	}
	if c.Archive.CacheEnabled {
		if _, ok := c.Caches[c.Archive.CacheName]; !ok {
			return fmt.Errorf("archive references unknown cache [%s]",
				c.Archive.CacheName)
		}
	}
	return nil
}
