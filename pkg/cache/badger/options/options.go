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

// Options is a collection of configurations for storing cached containers in
// a badger key-value store
type Options struct {
	// Directory represents the path on disk where the badger database resides
	Directory string `yaml:"directory,omitempty"`
	// ValueDirectory represents the path on disk where the badger database
	// writes its value log
	ValueDirectory string `yaml:"value_directory,omitempty"`
}

// New returns a new Badger Options reference with default values set
func New() *Options {
	return &Options{
		Directory:      d.DefaultBadgerDirectory,
		ValueDirectory: d.DefaultBadgerDirectory,
	}
}
