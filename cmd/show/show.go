// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show contains the command that previews a drawing's materialized
// configuration without invoking the CAD host.
package show

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/cadbatch/internal/color"
	"github.com/matt-FFFFFF/cadbatch/internal/config"
	"github.com/matt-FFFFFF/cadbatch/internal/params"
	"github.com/matt-FFFFFF/cadbatch/internal/rowsource"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag   = "file"
	drawingArg = "drawing"
)

var (
	// ErrReadFile is returned when the definition file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrWriteOutput is returned when the payload cannot be written to stdout.
	ErrWriteOutput = errors.New("failed to write output")
)

// ShowCmd is the command that prints the configuration a drawing would receive.
var ShowCmd = &cli.Command{
	Name: "show",
	Description: `Show the materialized configuration for one drawing: the base defaults from
the YAML definition with the drawing's CSV row overrides applied, exactly as
it would be handed to the CAD host.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      fileFlag,
			Aliases:   []string{"f"},
			Usage:     "The YAML definition file",
			TakesFile: true,
			OnlyOnce:  true,
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      drawingArg,
			UsageText: "DRAWING",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	data, err := os.ReadFile(cmd.String(fileFlag))
	if err != nil {
		return errors.Join(ErrReadFile, err)
	}

	def, err := config.Load(data)
	if err != nil {
		return errors.Join(ErrReadFile, err)
	}

	drawing := cmd.StringArg(drawingArg)
	if drawing == "" {
		return cli.Exit("Please provide a drawing name to show", 1)
	}

	var row rowsource.Row

	if def.RowsFile != "" {
		path := def.RowsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(cmd.String(fileFlag)), path)
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

		if r, ok := rows.ForDrawing(drawing); ok {
			row = r
		}
	}

	m := params.Build(row, def.Defaults)

	payload, err := m.Payload()
	if err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	// Round-trip through encoding/json so the formatter sees only the plain
	// types it colorizes.
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	formatter := colorjson.NewFormatter()
	formatter.Indent = 2
	formatter.DisabledColor = !color.Enabled()

	pretty, err := formatter.Marshal(obj)
	if err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	if _, err := fmt.Fprintln(cmd.Writer, string(pretty)); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	return nil
}
