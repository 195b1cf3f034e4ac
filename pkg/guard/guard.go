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

// Package guard samples system memory, cpu utilization and process resident
// memory and answers whether it is safe for an archive build attempt to
// proceed
package guard

import (
	"os"

	"github.com/docuforge/bundler/pkg/guard/options"
	"github.com/docuforge/bundler/pkg/observability/logging"
	"github.com/docuforge/bundler/pkg/observability/logging/logger"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

// MemSampler returns current system memory utilization as a percentage
type MemSampler func() (float64, error)

// CPUSampler returns current system cpu utilization as a percentage
type CPUSampler func() (float64, error)

// ProcMemSampler returns the process's current resident memory in bytes
type ProcMemSampler func() (uint64, error)

// Guard answers readiness questions against configured utilization marks and
// an optional process memory ceiling. Samplers are injectable so tests can
// simulate pressure without loading the host.
type Guard struct {
	Config *options.Options

	memSampler      MemSampler
	cpuSampler      CPUSampler
	procSampler     ProcMemSampler
	maxProcessBytes int64
}

// New returns a Guard for the provided options, using live gopsutil samplers
func New(opts *options.Options) *Guard {
	if opts == nil {
		opts = options.New()
	}
	return &Guard{
		Config:      opts,
		memSampler:  sampleMemory,
		cpuSampler:  sampleCPU,
		procSampler: sampleProcessMemory,
	}
}

// SetSamplers replaces the live samplers; nil values leave the current
// sampler in place
func (g *Guard) SetSamplers(m MemSampler, c CPUSampler) {
	if m != nil {
		g.memSampler = m
	}
	if c != nil {
		g.cpuSampler = c
	}
}

// SetProcessSampler replaces the live process memory sampler; a nil value
// leaves the current sampler in place
func (g *Guard) SetProcessSampler(p ProcMemSampler) {
	if p != nil {
		g.procSampler = p
	}
}

// SetProcessLimit sets the process memory ceiling in bytes; zero disables
// the process memory check
func (g *Guard) SetProcessLimit(n int64) {
	g.maxProcessBytes = n
}

// IsReady returns false only when utilization is at or above a high-water
// mark, or when the process's resident memory has reached the configured
// ceiling. Moderate pressure is not a failure, so normal load does not
// produce false negatives. Sampling errors degrade to ready, since refusing
// work on an unreadable gauge would stall builds for no observable cause.
func (g *Guard) IsReady() bool {
	memPct, err := g.memSampler()
	if err != nil {
		logger.WarnOnce("guard.mem", "memory sampling unavailable",
			logging.Pairs{"error": err})
		return true
	}
	if memPct >= g.Config.MemoryHighWaterPct {
		logger.Debug("resource guard not ready",
			logging.Pairs{"memoryPct": memPct, "mark": g.Config.MemoryHighWaterPct})
		return false
	}
	cpuPct, err := g.cpuSampler()
	if err != nil {
		logger.WarnOnce("guard.cpu", "cpu sampling unavailable",
			logging.Pairs{"error": err})
		return true
	}
	if cpuPct >= g.Config.CPUHighWaterPct {
		logger.Debug("resource guard not ready",
			logging.Pairs{"cpuPct": cpuPct, "mark": g.Config.CPUHighWaterPct})
		return false
	}
	if g.maxProcessBytes > 0 {
		rss, err := g.procSampler()
		if err != nil {
			logger.WarnOnce("guard.proc", "process memory sampling unavailable",
				logging.Pairs{"error": err})
			return true
		}
		if rss >= uint64(g.maxProcessBytes) {
			logger.Debug("resource guard not ready",
				logging.Pairs{"processBytes": rss,
					"limit": g.maxProcessBytes})
			return false
		}
	}
	return true
}

// RecommendThreshold returns a streaming threshold no larger than current.
// Above the memory pressure mark the threshold is halved so more entries are
// routed through spool files; floor is the provided minimum chunk size.
func (g *Guard) RecommendThreshold(current, floor int64) int64 {
	memPct, err := g.memSampler()
	if err != nil || memPct <= g.Config.MemoryPressurePct {
		return current
	}
	recommended := current / 2
	if recommended < floor {
		recommended = floor
	}
	if recommended != current {
		logger.Info("tightening streaming threshold under memory pressure",
			logging.Pairs{"memoryPct": memPct, "current": current,
				"recommended": recommended})
	}
	return recommended
}

func sampleMemory() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

func sampleCPU() (float64, error) {
	pcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, nil
	}
	return pcts[0], nil
}

func sampleProcessMemory() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	mi, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return mi.RSS, nil
}
