// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the command that executes a batch of drawing checks.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/cadbatch/internal/batch"
	"github.com/matt-FFFFFF/cadbatch/internal/config"
	"github.com/matt-FFFFFF/cadbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/cadbatch/internal/detect"
	"github.com/matt-FFFFFF/cadbatch/internal/drawings"
	"github.com/matt-FFFFFF/cadbatch/internal/hostproc"
	"github.com/matt-FFFFFF/cadbatch/internal/invoke"
	"github.com/matt-FFFFFF/cadbatch/internal/params"
	"github.com/matt-FFFFFF/cadbatch/internal/progress"
	"github.com/matt-FFFFFF/cadbatch/internal/rowsource"
	"github.com/matt-FFFFFF/cadbatch/internal/tui"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag    = "file"
	outFlag     = "out"
	tuiFlag     = "tui"
	workdirFlag = "workdir"
	cliExitStr  = ""
)

var (
	// ErrGetConfigFile is returned when the definition file cannot be fetched.
	ErrGetConfigFile = fmt.Errorf("failed to get config file")
	// ErrReadRows is returned when the CSV rows file cannot be read.
	ErrReadRows = fmt.Errorf("failed to read rows file")
)

// RunCmd is the command that runs a batch of drawing checks defined in a YAML file.
var RunCmd = &cli.Command{
	Name: "run",
	Description: `Run a batch of drawing checks defined in a YAML file.
The definition names the CAD host executable, the output directory for result
artifacts, a glob selecting the input drawings and optionally a CSV file with
per-drawing parameter overrides.

Definition file URLs use Hashicorp's go-getter syntax, which allows for
fetching files from various sources.
See https://github.com/hashicorp/go-getter.
`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "Specify the URL of the YAML definition file to run. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Write the run summary to the given file as well as to the terminal",
			TakesFile: true,
			Value:     "",
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"t", "interactive"},
			Usage:       "Run with interactive Terminal User Interface (TUI) showing real-time progress",
			Value:       false,
			DefaultText: "false",
			TakesFile:   false,
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:     workdirFlag,
			Aliases:  []string{"C"},
			Usage:    "Resolve the drawings glob and rows file relative to this directory",
			Value:    "",
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	url := cmd.String(fileFlag)
	if url == "" {
		logger.Error("Please specify the URL of the definition file using the --file or -f flag.")
		return cli.Exit(cliExitStr, 1)
	}

	data, err := getURL(ctx, url)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	def, err := config.Load(data)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to load definition from %s: %s", url, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	wd := cmd.String(workdirFlag)
	if wd == "" {
		if wd, err = os.Getwd(); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	fs := afero.NewOsFs()

	items, err := drawings.List(ctx, fs, wd, def.Drawings)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to enumerate drawings: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if len(items) == 0 {
		logger.Error(fmt.Sprintf("No drawings matched the pattern %q.", def.Drawings))
		return cli.Exit(cliExitStr, 1)
	}

	rows, err := loadRows(wd, def.RowsFile)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if rows != nil {
		if missing := params.ValidateRequiredColumns(rows.Headers); missing != nil {
			logger.Error(fmt.Sprintf("Rows file %s is missing required columns: %s",
				def.RowsFile, strings.Join(missing, ", ")))
			return cli.Exit(cliExitStr, 1)
		}
	}

	seq := &batch.Sequencer{
		Transport: &invoke.Transport{
			Fs:        fs,
			Launcher:  hostproc.OSLauncher{},
			Host:      def.Host,
			OutputDir: def.OutputDir,
			Run:       invoke.NewRun(),
		},
		Detector:    &detect.Detector{Fs: fs},
		Rows:        rows,
		Base:        def.Defaults,
		ItemTimeout: def.ItemTimeout,
	}

	var (
		res     *batch.Result
		execErr error
	)

	switch cmd.Bool(tuiFlag) {
	case true:
		// Run with TUI; log output is buffered so it cannot interleave with
		// the display, and flushed once the TUI returns the terminal.
		logger.Info("Starting interactive TUI mode...")

		buf := new(bytes.Buffer)
		tuiCtx := ctxlog.NewForTUI(ctx, buf)
		runner := tui.NewRunner()

		res, execErr = runner.Run(tuiCtx, func(ctx context.Context, reporter progress.Reporter) (*batch.Result, error) {
			return seq.ProcessAll(ctx, items, batch.Hooks{Reporter: reporter})
		})

		buf.WriteTo(cmd.Writer) //nolint:errcheck
	default:
		hooks := batch.Hooks{
			OnLog: func(line string) {
				logger.Info(line)
			},
		}

		res, execErr = seq.ProcessAll(ctx, items, hooks)
	}

	if execErr != nil {
		logger.Error(fmt.Sprintf("Batch execution error: %s", execErr.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if outFileName := cmd.String(outFlag); outFileName != "" {
		f, err := os.Create(outFileName)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to create output file %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		defer f.Close() //nolint:errcheck

		if err := res.WriteText(f); err != nil {
			logger.Error(fmt.Sprintf("Failed to write summary to file %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Summary written to %s", outFileName))
	}

	if err := res.WriteText(cmd.Writer); err != nil {
		logger.Error(fmt.Sprintf("Failed to write summary: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if res.HasFailures() || res.Cancelled {
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// loadRows reads the per-drawing overrides CSV, resolved against wd unless
// the path is absolute. A missing rows file in the definition is fine; the
// batch then runs on the base configuration alone.
func loadRows(wd, rowsFile string) (*rowsource.Table, error) {
	if rowsFile == "" {
		return nil, nil
	}

	path := rowsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(wd, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrReadRows, err)
	}

	defer f.Close() //nolint:errcheck

	rows, err := rowsource.Read(f)
	if err != nil {
		return nil, errors.Join(ErrReadRows, err)
	}

	return rows, nil
}

// getURL retrieves the content from the specified URL using Hashicorp's go-getter.
// It removes the temporary file after reading its content.
func getURL(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrGetConfigFile
	}

	tmpDir, err := os.MkdirTemp("", "cadbatch-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string
	// If it's not a local file URL, we need to download the directory and read the file from there
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, errors.Join(ErrGetConfigFile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return nil, fmt.Errorf("%w: invalid URL format: %s", ErrGetConfigFile, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := cli.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	content, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	return content, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // Minimum parts in a go-getter URL: scheme, host, and path
)

// splitFileNameFromGetterURL splits the URL into the directory and file name.
// It returns the new getter URL without the file name and the file name itself.
// It will append any ref query parameter to the new URL if it exists.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref, fileName string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	if strings.Contains(parts[len(parts)-1], goGetterRefSeparator) {
		refSplit := strings.Split(parts[len(parts)-1], goGetterRefSeparator)
		if len(refSplit) > 1 {
			ref = strings.Join(refSplit[1:], "")
		}

		parts[len(parts)-1] = refSplit[0]
	}

	if filepath.Clean(parts[len(parts)-1]) == filepath.Dir(parts[len(parts)-1]) {
		return "", ""
	}

	fileName = filepath.Base(parts[len(parts)-1])
	parts[len(parts)-1] = filepath.Dir(parts[len(parts)-1])

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1] // Remove the last part which is the file name
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
