// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/cadbatch/cmd/check"
	"github.com/matt-FFFFFF/cadbatch/cmd/run"
	"github.com/matt-FFFFFF/cadbatch/cmd/show"
	"github.com/urfave/cli/v3"
)

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
		check.CheckCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "cadbatch",
	Description: `Cadbatch drives an external CAD application through a batch of per-drawing
check jobs. Each job materializes a typed configuration from a base YAML
definition and per-drawing CSV overrides, hands it to the CAD host over the
environment, and infers the job's outcome from the result artifact the host
leaves (or doesn't leave) in the output directory.`,
	Usage:     "cadbatch run -f mybatch.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
