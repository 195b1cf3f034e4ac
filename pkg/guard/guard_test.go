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

package guard

import (
	"errors"
	"testing"

	"github.com/docuforge/bundler/pkg/guard/options"

	"github.com/stretchr/testify/require"
)

func fixed(pct float64) func() (float64, error) {
	return func() (float64, error) { return pct, nil }
}

func TestIsReady(t *testing.T) {
	tests := []struct {
		name     string
		mem, cpu float64
		expect   bool
	}{
		{"idle", 10, 5, true},
		{"moderate pressure is still ready", 80, 70, true},
		{"memory at high water", 90, 5, false},
		{"cpu at high water", 10, 95, false},
		{"both saturated", 99, 99, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := New(options.New())
			g.SetSamplers(fixed(tc.mem), fixed(tc.cpu))
			require.Equal(t, tc.expect, g.IsReady())
		})
	}
}

func TestIsReadyProcessCeiling(t *testing.T) {
	g := New(options.New())
	g.SetSamplers(fixed(10), fixed(10))

	// no ceiling configured, process memory is not consulted
	g.SetProcessSampler(func() (uint64, error) { return 4 << 20, nil })
	require.True(t, g.IsReady())

	g.SetProcessLimit(1 << 20)
	require.False(t, g.IsReady())

	g.SetProcessSampler(func() (uint64, error) { return 1 << 19, nil })
	require.True(t, g.IsReady())
}

func TestIsReadyProcessSamplerError(t *testing.T) {
	g := New(options.New())
	g.SetSamplers(fixed(10), fixed(10))
	g.SetProcessLimit(1)
	g.SetProcessSampler(func() (uint64, error) { return 0, errors.New("no proc") })
	require.True(t, g.IsReady())
}

func TestIsReadySamplerError(t *testing.T) {
	g := New(options.New())
	g.SetSamplers(func() (float64, error) { return 0, errors.New("no proc") }, nil)
	require.True(t, g.IsReady())
}

func TestRecommendThreshold(t *testing.T) {
	g := New(options.New())

	g.SetSamplers(fixed(50), fixed(10))
	require.Equal(t, int64(1<<20), g.RecommendThreshold(1<<20, 4096))

	g.SetSamplers(fixed(80), fixed(10))
	require.Equal(t, int64(1<<19), g.RecommendThreshold(1<<20, 4096))

	// floor applies
	require.Equal(t, int64(4096), g.RecommendThreshold(5000, 4096))
}

func TestOptionsValidate(t *testing.T) {
	o := options.New()
	require.NoError(t, o.Validate())

	o.Policy = "sometimes"
	require.Error(t, o.Validate())

	o = options.New()
	o.MemoryHighWaterPct = 150
	require.Error(t, o.Validate())
}
