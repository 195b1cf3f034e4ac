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
// a bbolt database
type Options struct {
	// Filename represents the filename (including path) of the bbolt database
	Filename string `yaml:"filename,omitempty"`
	// Bucket represents the name of the bucket within bbolt under which
	// records will be stored
	Bucket string `yaml:"bucket,omitempty"`
}

// New returns a new BBolt Options reference with default values set
func New() *Options {
	return &Options{
		Filename: d.DefaultBBoltFile,
		Bucket:   d.DefaultBBoltBucket,
	}
}
