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

// Package retry provides the exponential backoff policy used between archive
// build attempts
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

const (
	DefaultInitialBackoffMS  = 250
	DefaultMaxBackoffSecs    = 30
	DefaultBackoffMultiplier = 2.0
	DefaultJitterFraction    = 0.1

	DefaultInitialBackoff = DefaultInitialBackoffMS * time.Millisecond
	DefaultMaxBackoff     = DefaultMaxBackoffSecs * time.Second
)

// SleepFunc blocks for the provided duration or until the context is done,
// in which case it returns the context's error. Injectable so tests can run
// retry scenarios without wall-clock sleeps.
type SleepFunc func(context.Context, time.Duration) error

// Policy holds the backoff configuration for a retry loop. The zero value is
// usable; unset fields assume defaults at calculation time.
type Policy struct {
	// InitialBackoffMS is the delay preceding the first retry, in
	// milliseconds; 0 assumes the default
	InitialBackoffMS int `yaml:"initial_backoff_ms,omitempty"`
	// MaxBackoffSecs caps the delay between attempts, in seconds; 0 assumes
	// the default
	MaxBackoffSecs int `yaml:"max_backoff_secs,omitempty"`
	// BackoffMultiplier is the per-attempt delay growth factor
	BackoffMultiplier float64 `yaml:"backoff_multiplier,omitempty"`
	// JitterFraction spreads each delay symmetrically by the given fraction;
	// 0 assumes the default at Initialize, a negative value disables jitter
	JitterFraction float64 `yaml:"jitter_fraction,omitempty"`

	// Sleep is the function used to wait between attempts; nil means a
	// timer-based, context-aware sleep
	Sleep SleepFunc `yaml:"-"`

	//  Synthetic Values

	// InitialBackoff is the duration form of InitialBackoffMS, populated at
	// Initialize
	InitialBackoff time.Duration `yaml:"-"`
	// MaxBackoff is the duration form of MaxBackoffSecs, populated at
	// Initialize
	MaxBackoff time.Duration `yaml:"-"`
}

// New returns a Policy with default values
func New() Policy {
	return Policy{
		InitialBackoffMS:  DefaultInitialBackoffMS,
		MaxBackoffSecs:    DefaultMaxBackoffSecs,
		BackoffMultiplier: DefaultBackoffMultiplier,
		JitterFraction:    DefaultJitterFraction,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
	}
}

// Initialize overlays default values onto any unset fields and computes the
// synthetic duration values
func (p *Policy) Initialize() {
	if p.InitialBackoffMS <= 0 {
		p.InitialBackoffMS = DefaultInitialBackoffMS
	}
	if p.MaxBackoffSecs <= 0 {
		p.MaxBackoffSecs = DefaultMaxBackoffSecs
	}
	if p.BackoffMultiplier <= 0 {
		p.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if p.JitterFraction == 0 {
		p.JitterFraction = DefaultJitterFraction
	}
	p.InitialBackoff = time.Duration(p.InitialBackoffMS) * time.Millisecond
	p.MaxBackoff = time.Duration(p.MaxBackoffSecs) * time.Second
}

// Backoff returns the delay preceding the provided 1-based attempt number
func (p Policy) Backoff(attempt int) time.Duration {
	initial := p.InitialBackoff
	if initial <= 0 {
		initial = DefaultInitialBackoff
	}
	maxDelay := p.MaxBackoff
	if maxDelay <= 0 {
		maxDelay = DefaultMaxBackoff
	}
	multiplier := p.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = DefaultBackoffMultiplier
	}
	if attempt < 1 {
		attempt = 1
	}
	base := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if base > float64(maxDelay) {
		base = float64(maxDelay)
	}
	if p.JitterFraction > 0 {
		// jitter is symmetric around the base delay
		base += base * p.JitterFraction * (2*rand.Float64() - 1)
	}
	return time.Duration(base)
}

// Wait sleeps for the backoff delay preceding the provided attempt, using
// the injected Sleep function when one is set
func (p Policy) Wait(ctx context.Context, attempt int) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = timerSleep
	}
	return sleep(ctx, p.Backoff(attempt))
}

func timerSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
