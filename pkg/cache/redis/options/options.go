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
	d "github.com/docuforge/bundler/pkg/cache/options/defaults"
)

// Options is a collection of configurations for connecting to a redis-backed
// cache store
type Options struct {
	// ClientType defines the type of Redis Client ("standard", "cluster",
	// "sentinel")
	ClientType string `yaml:"client_type,omitempty"`
	// Protocol represents the connection method (e.g., "tcp", "unix", etc.)
	Protocol string `yaml:"protocol,omitempty"`
	// Endpoint represents FQDN:port or IPAddress:Port of the Redis Endpoint
	Endpoint string `yaml:"endpoint,omitempty"`
	// Endpoints represents FQDN:port or IPAddress:Port collection of a
	// Redis Cluster or Sentinel Nodes
	Endpoints []string `yaml:"endpoints,omitempty"`
	// SentinelMaster should be set when using a Redis Sentinel to indicate
	// the Master Node
	SentinelMaster string `yaml:"sentinel_master,omitempty"`
	// Password can be set when using password protected redis instances
	Password string `yaml:"password,omitempty"`
	// DB is the Database to be selected after connecting to the server
	DB int `yaml:"db,omitempty"`
}

// New returns a new Redis Options reference with default values set
func New() *Options {
	return &Options{
		ClientType: d.DefaultRedisClientType,
		Protocol:   d.DefaultRedisProtocol,
		Endpoint:   d.DefaultRedisEndpoint,
	}
}
