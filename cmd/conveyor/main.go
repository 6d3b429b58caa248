// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package main implements the conveyor CLI for running content-ingestion
// crawls against a Solr-compatible index.
//
// Usage:
//
//	conveyor init               Create crawl.yaml configuration
//	conveyor crawl               Run a single pass and exit
//	conveyor run                 Run the service loop (full/incremental crawls)
//	conveyor status [--json]     Show service timer status
//	conveyor reset               Discard crawl residue (destructive!)
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "crawl.yaml", "Path to the connector's config file")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `conveyor - content-ingestion connector CLI

Usage:
  conveyor <command> [options]

Commands:
  init      Create crawl.yaml configuration
  crawl     Run a single pass and exit
  run       Run the service loop, alternating full/incremental crawls
  status    Show service timer status
  reset     Discard crawl residue (destructive!)

Global Options:
  --config  Path to the connector's config file (default "crawl.yaml")
  --version Show version and exit

Examples:
  conveyor init
  conveyor crawl --json
  conveyor run --metrics-addr :9090
  conveyor status --json
  conveyor reset --yes
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("conveyor version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, *configPath)
	case "crawl":
		runCrawl(cmdArgs, *configPath)
	case "run":
		runServe(cmdArgs, *configPath)
	case "status":
		runStatus(cmdArgs, *configPath)
	case "reset":
		runReset(cmdArgs, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
