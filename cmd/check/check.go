// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package check contains the command that validates a CSV rows file before a run.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matt-FFFFFF/cadbatch/internal/params"
	"github.com/matt-FFFFFF/cadbatch/internal/rowsource"
	"github.com/urfave/cli/v3"
)

const fileArg = "file"

// ErrReadFile is returned when the rows file cannot be read.
var ErrReadFile = errors.New("failed to read file")

// CheckCmd is the command that validates a rows file's header against the
// required column set.
var CheckCmd = &cli.Command{
	Name: "check",
	Description: `Validate a CSV rows file: the header must carry the required columns
(drawing file, check profile and revision) under any of their accepted
spellings. Unknown columns are reported but do not fail validation.`,
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      fileArg,
			UsageText: "CSVFILE",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	path := cmd.StringArg(fileArg)
	if path == "" {
		return cli.Exit("Please provide a CSV rows file to check", 1)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Join(ErrReadFile, err)
	}

	defer f.Close() //nolint:errcheck

	rows, err := rowsource.Read(f)
	if err != nil {
		return errors.Join(ErrReadFile, err)
	}

	if missing := params.ValidateRequiredColumns(rows.Headers); missing != nil {
		fmt.Fprintf(cmd.ErrWriter, "missing required columns: %s\n", strings.Join(missing, ", "))
		return cli.Exit("", 1)
	}

	var unknown []string

	for _, header := range rows.Headers {
		if _, ok := params.Resolve(header); !ok {
			unknown = append(unknown, header)
		}
	}

	if len(unknown) > 0 {
		fmt.Fprintf(cmd.Writer, "ignored columns: %s\n", strings.Join(unknown, ", "))
	}

	fmt.Fprintf(cmd.Writer, "%s: %d rows, header ok\n", path, len(rows.Rows))

	return nil
}
