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

// Package main is the main package for the bundler application
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/docuforge/bundler/pkg/archive"
	"github.com/docuforge/bundler/pkg/cache/registry"
	"github.com/docuforge/bundler/pkg/config"
	"github.com/docuforge/bundler/pkg/observability/logging"
	"github.com/docuforge/bundler/pkg/observability/logging/logger"
)

var (
	applicationGitCommitID string
	applicationBuildTime   string
)

const (
	applicationName    = "bundler"
	applicationVersion = "1.1.0"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {

	fs := flag.NewFlagSet(applicationName, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to the configuration file")
	output := fs.String("output", "", "path to write the finished archive (default: <name>.zip)")
	name := fs.String("name", "archive", "name of the archive to build")
	noCache := fs.Bool("no-cache", false, "bypass the result cache for this build")
	showVersion := fs.Bool("version", false, "print version information and exit")
	fs.Usage = func() { printUsage(stdout, fs) }
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *showVersion {
		fmt.Fprintln(stdout, version())
		return 0
	}

	var conf *config.Config
	var err error
	if *configPath != "" {
		conf, err = config.Load(*configPath)
	} else {
		conf = config.NewConfig()
		err = conf.Initialize()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", applicationName, err)
		return 1
	}

	log := logging.New(conf.Logging)
	logger.SetLogger(log)
	defer log.Close()

	entries := fs.Args()
	if len(entries) == 0 {
		printUsage(stdout, fs)
		return 1
	}

	caches, err := registry.LoadCachesFromConfig(conf.Caches)
	if err != nil {
		logger.Error("could not initialize caches", logging.Pairs{"error": err})
		return 1
	}
	defer registry.CloseCaches(caches)

	b := archive.New(*name, conf.Archive)
	if c, ok := caches[conf.Archive.CacheName]; ok {
		b.SetCache(c)
	}
	defer b.Close()

	for _, arg := range entries {
		entryName, location, ok := strings.Cut(arg, "=")
		if !ok || entryName == "" || location == "" {
			fmt.Fprintf(os.Stderr, "invalid entry [%s]; expected name=path\n", arg)
			return 1
		}
		if err = b.AddFromPath(entryName, location); err != nil {
			logger.Error("could not register entry",
				logging.Pairs{"entry": entryName, "error": err})
			return 1
		}
	}

	b.SetProgressFunc(func(pct int, msg string) {
		logger.Debug("build progress", logging.Pairs{"pct": pct, "msg": msg})
	})

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := b.BuildWith(ctx, archive.BuildOptions{
		UseCache:   conf.Archive.CacheEnabled && !*noCache,
		MaxRetries: conf.Archive.MaxRetries,
	})
	if err != nil {
		logger.Error("archive build failed",
			logging.Pairs{"archiveName": *name, "error": err})
		return 1
	}

	dest := *output
	if dest == "" {
		dest = *name + ".zip"
	}
	if err = writeContainer(dest, res.Container); err != nil {
		logger.Error("could not write archive",
			logging.Pairs{"path": dest, "error": err})
		return 1
	}

	logger.Info("archive written", logging.Pairs{
		"path":             dest,
		"files":            res.Metrics.TotalFiles,
		"sourceBytes":      res.Metrics.TotalBytes,
		"compressedBytes":  res.Metrics.CompressedBytes,
		"compressionRatio": fmt.Sprintf("%.3f", res.Metrics.CompressionRatio()),
		"streamedFiles":    res.Metrics.StreamedFiles,
		"cachedFiles":      res.Metrics.CachedFiles,
		"attempts":         res.Metrics.Attempts,
		"duration":         res.Metrics.Duration,
	})
	return 0
}

// writeContainer writes the container to a temporary file in the destination
// directory and renames it into place
func writeContainer(dest string, container []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(container); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
