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

import "fmt"

// Policy determines how a failed readiness check is handled
type Policy string

const (
	// PolicyStrict fails the build attempt when the guard reports
	// insufficient headroom, deferring to the retry loop
	PolicyStrict Policy = "strict"
	// PolicyAdvisory logs a warning and proceeds with the attempt
	PolicyAdvisory Policy = "advisory"
)

const (
	// DefaultMemoryHighWaterPct is the memory utilization at or above which
	// the guard reports not-ready
	DefaultMemoryHighWaterPct = 90.0
	// DefaultCPUHighWaterPct is the cpu utilization at or above which the
	// guard reports not-ready
	DefaultCPUHighWaterPct = 95.0
	// DefaultMemoryPressurePct is the memory utilization above which the
	// guard recommends a tighter streaming threshold
	DefaultMemoryPressurePct = 75.0
)

// Options is a collection of resource guard configurations
type Options struct {
	// Policy selects strict or advisory handling of a not-ready guard
	Policy Policy `yaml:"policy,omitempty"`
	// MemoryHighWaterPct is the not-ready memory utilization mark
	MemoryHighWaterPct float64 `yaml:"memory_high_water_pct,omitempty"`
	// CPUHighWaterPct is the not-ready cpu utilization mark
	CPUHighWaterPct float64 `yaml:"cpu_high_water_pct,omitempty"`
	// MemoryPressurePct is the streaming-threshold pressure mark
	MemoryPressurePct float64 `yaml:"memory_pressure_pct,omitempty"`
}

// New returns a new Options with default values
func New() *Options {
	return &Options{
		Policy:             PolicyAdvisory,
		MemoryHighWaterPct: DefaultMemoryHighWaterPct,
		CPUHighWaterPct:    DefaultCPUHighWaterPct,
		MemoryPressurePct:  DefaultMemoryPressurePct,
	}
}

// Clone returns an exact copy of the Options
func (o *Options) Clone() *Options {
	out := *o
	return &out
}

// Validate returns an error if the Options are invalid
func (o *Options) Validate() error {
	switch o.Policy {
	case PolicyStrict, PolicyAdvisory, "":
	default:
		return fmt.Errorf("invalid resource policy [%s]", o.Policy)
	}
	for _, pct := range []float64{o.MemoryHighWaterPct, o.CPUHighWaterPct,
		o.MemoryPressurePct} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("utilization mark out of range: %.1f", pct)
		}
	}
	return nil
}

// Initialize overlays default values onto any unset fields
func (o *Options) Initialize() {
	if o.Policy == "" {
		o.Policy = PolicyAdvisory
	}
	if o.MemoryHighWaterPct == 0 {
		o.MemoryHighWaterPct = DefaultMemoryHighWaterPct
	}
	if o.CPUHighWaterPct == 0 {
		o.CPUHighWaterPct = DefaultCPUHighWaterPct
	}
	if o.MemoryPressurePct == 0 {
		o.MemoryPressurePct = DefaultMemoryPressurePct
	}
}
