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

// Package archive implements the archive builder: a bounded-memory,
// cache-aware assembler of compressed containers from registered inputs
package archive

import (
	"bytes"
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/docuforge/bundler/pkg/archive/metrics"
	"github.com/docuforge/bundler/pkg/archive/options"
	"github.com/docuforge/bundler/pkg/cache"
	"github.com/docuforge/bundler/pkg/cache/status"
	"github.com/docuforge/bundler/pkg/errors"
	"github.com/docuforge/bundler/pkg/fingerprint"
	"github.com/docuforge/bundler/pkg/guard"
	guardopts "github.com/docuforge/bundler/pkg/guard/options"
	"github.com/docuforge/bundler/pkg/observability/logging"
	"github.com/docuforge/bundler/pkg/observability/logging/logger"
	obs "github.com/docuforge/bundler/pkg/observability/metrics"
	"github.com/docuforge/bundler/pkg/retry"
)

// Result is the product of a successful build: the finished container and
// the metrics snapshot describing how it was produced
type Result struct {
	// Name is the archive name the builder was created with
	Name string
	// Container holds the compressed container bytes
	Container []byte
	// Metrics describes the build that produced (or retrieved) the container
	Metrics metrics.Snapshot
}

// BuildOptions carries per-call overrides for a single build
type BuildOptions struct {
	// UseCache enables the fingerprint cache lookup and store for this build
	UseCache bool
	// MaxRetries overrides the configured attempt ceiling; values below 1
	// assume the configured value
	MaxRetries int
}

// Builder accumulates a set of named inputs and assembles them into a single
// compressed container. Registration order is preserved in the container.
// A Builder is not safe for concurrent use.
type Builder struct {
	name       string
	cfg        *options.Options
	entries    []*Entry
	names      map[string]struct{}
	totalBytes int64
	cache      cache.Client
	guard      *guard.Guard
	retry      retry.Policy
	progress   ProgressFunc
	closed     bool
}

// New returns a Builder for the named archive using the provided options.
// A nil cfg assumes defaults.
func New(name string, cfg *options.Options) *Builder {
	if cfg == nil {
		cfg = options.New()
	}
	g := guard.New(cfg.Guard)
	g.SetProcessLimit(cfg.MaxMemoryBytes)
	return &Builder{
		name:  name,
		cfg:   cfg,
		names: make(map[string]struct{}),
		guard: g,
		retry: cfg.Retry,
	}
}

// SetCache attaches the cache store consulted before and after builds
func (b *Builder) SetCache(c cache.Client) {
	b.cache = c
}

// SetGuard replaces the resource guard; nil disables resource checks
func (b *Builder) SetGuard(g *guard.Guard) {
	b.guard = g
}

// SetRetryPolicy replaces the backoff policy used between attempts
func (b *Builder) SetRetryPolicy(p retry.Policy) {
	b.retry = p
}

// SetProgressFunc registers a callback receiving build progress updates
func (b *Builder) SetProgressFunc(f ProgressFunc) {
	b.progress = f
}

// Entries returns the number of registered inputs
func (b *Builder) Entries() int {
	return len(b.entries)
}

// AddInline registers an in-memory payload under the provided name
func (b *Builder) AddInline(name string, content []byte) error {
	if err := b.validateAdd(name, int64(len(content))); err != nil {
		return err
	}
	b.append(&Entry{Name: name, Size: int64(len(content)), content: content})
	return nil
}

// AddFromPath registers a file on disk under the provided name. The file is
// not read at registration time; only its size and identity are recorded.
func (b *Builder) AddFromPath(name, location string) error {
	if b.closed {
		return errors.ErrBuilderClosed
	}
	if name == "" {
		return errors.ErrEmptyName
	}
	fi, err := os.Stat(location)
	if err != nil {
		return &errors.ValidationError{Name: name,
			Reason: fmt.Sprintf("source is not readable: %s", err)}
	}
	if fi.IsDir() {
		return &errors.ValidationError{Name: name,
			Reason: "source is a directory"}
	}
	if err = b.validateAdd(name, fi.Size()); err != nil {
		return err
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		abs = filepath.Clean(location)
	}
	b.append(&Entry{Name: name, Size: fi.Size(), path: abs})
	return nil
}

// validateAdd enforces the per-item and aggregate ceilings. A rejected add
// leaves the input set and its aggregate size unchanged.
func (b *Builder) validateAdd(name string, size int64) error {
	if b.closed {
		return errors.ErrBuilderClosed
	}
	if name == "" {
		return errors.ErrEmptyName
	}
	if _, ok := b.names[name]; ok {
		return &errors.ValidationError{Name: name, Reason: "duplicate entry name"}
	}
	if size > b.cfg.MaxFileSizeBytes {
		return &errors.ValidationError{Name: name,
			Reason: fmt.Sprintf("size %d exceeds the per-item limit of %d bytes",
				size, b.cfg.MaxFileSizeBytes)}
	}
	if b.totalBytes+size > b.cfg.MaxTotalSizeBytes {
		return &errors.ValidationError{Name: name,
			Reason: fmt.Sprintf("size %d exceeds the remaining archive capacity of %d bytes",
				size, b.cfg.MaxTotalSizeBytes-b.totalBytes)}
	}
	return nil
}

func (b *Builder) append(e *Entry) {
	b.entries = append(b.entries, e)
	b.names[e.Name] = struct{}{}
	b.totalBytes += e.Size
}

// Fingerprint returns the deterministic cache key for the current input set
func (b *Builder) Fingerprint() string {
	tuples := make([]fingerprint.Tuple, len(b.entries))
	for i, e := range b.entries {
		tuples[i] = e.tuple()
	}
	return fingerprint.Sum(tuples)
}

// Build assembles the container using the configured cache and retry
// settings. See BuildWith.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	return b.BuildWith(ctx, BuildOptions{
		UseCache:   b.cfg.CacheEnabled,
		MaxRetries: b.cfg.MaxRetries,
	})
}

// BuildWith assembles the container with per-call overrides. On a fresh cache
// hit the cached container is returned without a build. Otherwise attempts
// proceed under the retry policy; validation failures, integrity failures and
// context cancellation end the build immediately, while transient failures
// are retried with backoff up to the attempt ceiling.
func (b *Builder) BuildWith(ctx context.Context,
	opts BuildOptions) (*Result, error) {
	if b.closed {
		return nil, errors.ErrBuilderClosed
	}
	start := time.Now()
	maxAttempts := opts.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = b.cfg.MaxRetries
	}
	key := b.Fingerprint()

	if opts.UseCache && b.cache != nil {
		if res := b.fromCache(key, start); res != nil {
			obs.BuildsTotal.WithLabelValues("cached").Inc()
			logger.Info("archive served from cache",
				logging.Pairs{"archiveName": b.name, "key": key})
			return res, nil
		}
	}

	var lastErr error
	failures := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := b.retry.Wait(ctx, attempt-1); err != nil {
				obs.BuildsTotal.WithLabelValues("error").Inc()
				return nil, err
			}
		}
		res, err := b.buildAttempt(ctx, attempt, failures, start)
		if err == nil {
			if opts.UseCache && b.cache != nil {
				b.storeCache(key, res)
			}
			obs.BuildsTotal.WithLabelValues("success").Inc()
			obs.BuildAttempts.WithLabelValues("success").Inc()
			obs.BuildDuration.Observe(res.Metrics.Duration.Seconds())
			obs.BuildWrittenBytes.Add(float64(res.Metrics.CompressedBytes))
			obs.BuildSourceBytes.Add(float64(res.Metrics.TotalBytes))
			logger.Info("archive build complete", logging.Pairs{
				"archiveName": b.name, "key": key,
				"files":   res.Metrics.TotalFiles,
				"bytes":   res.Metrics.CompressedBytes,
				"attempt": attempt,
			})
			return res, nil
		}
		if isFatal(err) {
			obs.BuildAttempts.WithLabelValues("error").Inc()
			obs.BuildsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		lastErr = err
		failures++
		obs.BuildAttempts.WithLabelValues("retry").Inc()
		logger.Warn("archive build attempt failed", logging.Pairs{
			"archiveName": b.name, "attempt": attempt,
			"maxRetries": maxAttempts, "error": err,
		})
	}
	obs.BuildsTotal.WithLabelValues("error").Inc()
	return nil, &errors.RetryExhaustedError{Attempts: maxAttempts, Err: lastErr}
}

// Close releases the builder. Subsequent adds and builds fail with
// ErrBuilderClosed.
func (b *Builder) Close() error {
	b.closed = true
	b.entries = nil
	b.names = nil
	return nil
}

// isFatal reports whether an attempt error must end the build without
// further retries
func isFatal(err error) bool {
	var verr *errors.ValidationError
	var ierr *errors.IntegrityError
	return goerrors.As(err, &verr) || goerrors.As(err, &ierr) ||
		goerrors.Is(err, context.Canceled) ||
		goerrors.Is(err, context.DeadlineExceeded)
}

// buildAttempt performs one complete assembly pass: guard check, entry
// classification, container write, and integrity verification
func (b *Builder) buildAttempt(ctx context.Context, attempt, failures int,
	start time.Time) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if b.guard != nil && !b.guard.IsReady() {
		if b.guard.Config.Policy == guardopts.PolicyStrict {
			return nil, errors.ErrResourceExhausted
		}
		logger.Warn("proceeding despite resource pressure",
			logging.Pairs{"archiveName": b.name, "attempt": attempt,
				"policy": guardopts.PolicyAdvisory})
	}

	threshold := b.cfg.StreamingThresholdBytes
	if b.guard != nil {
		threshold = b.guard.RecommendThreshold(threshold, b.cfg.ChunkSizeBytes)
	}
	streamed := 0
	for _, e := range b.entries {
		e.Streamed = e.Size > threshold
		if e.Streamed {
			streamed++
		}
	}

	spoolDir, err := os.MkdirTemp("", "bundler-spool-")
	if err != nil {
		return nil, fmt.Errorf("could not create spool directory: %w", err)
	}
	defer os.RemoveAll(spoolDir)

	buf := &bytes.Buffer{}
	cw := newContainerWriter(buf, b.cfg.CompressionLevel)
	tracker := newProgressTracker(b.progress, len(b.entries))

	var peak uint64
	sampleMemory := func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if ms.Alloc > peak {
			peak = ms.Alloc
		}
	}
	sampleMemory()

	for i, e := range b.entries {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		tracker.entry(i, 0, "adding "+e.Name)
		if err = b.writeEntry(ctx, cw, e, i, spoolDir, tracker); err != nil {
			return nil, err
		}
		if e.Streamed {
			obs.StreamedEntries.Inc()
		}
		sampleMemory()
	}
	if err = cw.close(); err != nil {
		return nil, fmt.Errorf("could not finalize container: %w", err)
	}
	container := buf.Bytes()

	if b.cfg.VerifyIntegrity {
		tracker.verifying()
		if err = Verify(container, len(b.entries)); err != nil {
			return nil, err
		}
	}
	tracker.done()

	return &Result{
		Name:      b.name,
		Container: container,
		Metrics: metrics.Snapshot{
			TotalFiles:      len(b.entries),
			TotalBytes:      b.totalBytes,
			CompressedBytes: int64(len(container)),
			Duration:        time.Since(start),
			PeakMemoryBytes: peak,
			StreamedFiles:   streamed,
			Errors:          failures,
			Attempts:        attempt,
		},
	}, nil
}

// writeEntry writes one entry into the container, spooling it in chunks when
// classified as streamed
func (b *Builder) writeEntry(ctx context.Context, cw *containerWriter,
	e *Entry, i int, spoolDir string, tracker *progressTracker) error {
	w, err := cw.create(e.Name)
	if err != nil {
		return fmt.Errorf("could not create container entry [%s]: %w", e.Name, err)
	}
	src, err := e.open()
	if err != nil {
		return fmt.Errorf("could not open source for entry [%s]: %w", e.Name, err)
	}
	defer src.Close()
	if e.Streamed {
		size := e.Size
		_, err = spoolCopy(ctx, w, src, spoolDir, b.cfg.ChunkSizeBytes,
			func(done int64) {
				tracker.entry(i, float64(done)/float64(size), "spooling "+e.Name)
			})
	} else {
		_, err = io.Copy(w, src)
	}
	if err != nil {
		return fmt.Errorf("could not write entry [%s]: %w", e.Name, err)
	}
	return nil
}

// fromCache returns a Result for a fresh, intact cached container, or nil
// when the build must proceed
func (b *Builder) fromCache(key string, start time.Time) *Result {
	cacheName := b.cache.Configuration().Name
	rec, lookupStatus, err := b.cache.Retrieve(key)
	switch lookupStatus {
	case status.LookupStatusHit:
		obs.CacheEvents.WithLabelValues(cacheName, "hit").Inc()
		if b.cfg.VerifyIntegrity {
			if verr := Verify(rec.Container, rec.Metrics.TotalFiles); verr != nil {
				logger.Warn("discarding corrupt cached container",
					logging.Pairs{"cacheName": cacheName, "key": key,
						"error": verr})
				obs.CacheEvents.WithLabelValues(cacheName, "error").Inc()
				b.cache.Remove(key)
				return nil
			}
		}
		snap := rec.Metrics
		snap.CachedFiles = snap.TotalFiles
		snap.Duration = time.Since(start)
		return &Result{Name: b.name, Container: rec.Container, Metrics: snap}
	case status.LookupStatusExpired:
		obs.CacheEvents.WithLabelValues(cacheName, "expired").Inc()
	case status.LookupStatusKeyMiss:
		obs.CacheEvents.WithLabelValues(cacheName, "kmiss").Inc()
	default:
		obs.CacheEvents.WithLabelValues(cacheName, "error").Inc()
		logger.Debug("cache lookup failed",
			logging.Pairs{"cacheName": cacheName, "key": key, "error": err})
	}
	return nil
}

// storeCache persists a build result under its fingerprint. Store failures
// are logged and do not fail the build.
func (b *Builder) storeCache(key string, res *Result) {
	cacheName := b.cache.Configuration().Name
	rec := &cache.Record{
		Container: res.Container,
		Metrics:   res.Metrics,
		Created:   time.Now(),
	}
	if err := b.cache.Store(key, rec); err != nil {
		logger.Warn("could not cache archive",
			logging.Pairs{"cacheName": cacheName, "key": key, "error": err})
		obs.CacheEvents.WithLabelValues(cacheName, "error").Inc()
		return
	}
	obs.CacheEvents.WithLabelValues(cacheName, "store").Inc()
}
