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

package main

import (
	"flag"
	"fmt"
	"io"
	"runtime"
)

const usageText = `
Bundler Usage:

 Print Version Info:
  bundler -version

 Build an archive from named sources:
  bundler [-config /path/to/file.yaml] [-name report] [-output report.zip] name=path [name=path ...]

 Each positional argument registers one archive entry: the name it will carry
 inside the container, and the path of the source file.

------

 Build a two-entry archive with the default configuration:
  bundler -name report summary.txt=./summary.txt data.csv=./exports/data.csv

 Bypass the result cache for a single build:
  bundler -no-cache -output /tmp/report.zip summary.txt=./summary.txt

The configuration file controls compression, size ceilings, streaming,
caching, retries and logging; every section is optional.
`

func version() string {
	return fmt.Sprintf("Bundler version: %s, buildInfo: %s %s, goVersion: %s",
		applicationVersion, applicationBuildTime, applicationGitCommitID,
		runtime.Version())
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, version())
	fmt.Fprint(w, usageText)
	fmt.Fprintln(w, "Flags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
