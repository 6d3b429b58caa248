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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	cerrors "github.com/kraklabs/conveyor/internal/errors"
	"github.com/kraklabs/conveyor/internal/ui"
)

// runInit executes the 'init' CLI command, writing a default crawl.yaml.
func runInit(args []string, configPath string) {
	fs := pflag.NewFlagSet("init", pflag.ExitOnError)
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: conveyor init [options]

Writes a default configuration file to --config (default "crawl.yaml").
Fails if the file already exists.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	ui.InitColors(*noColor)

	if err := writeDefaultConfig(configPath); err != nil {
		cerrors.Fatal(cerrors.NewIOError("failed to write configuration", err.Error(), "remove or rename the existing file, or pass --config", err), false)
	}
	ui.Successf("wrote %s", configPath)
}
