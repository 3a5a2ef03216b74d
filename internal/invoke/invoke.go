// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package invoke is the invocation transport for the external CAD host.
//
// The materialized configuration travels to the host over a fixed set of
// environment variables rather than a temporary file, which avoids
// filesystem races between rapid sequential jobs and leaves nothing to
// clean up.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/cadbatch/internal/config"
	"github.com/matt-FFFFFF/cadbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/cadbatch/internal/drawings"
	"github.com/matt-FFFFFF/cadbatch/internal/hostproc"
	"github.com/matt-FFFFFF/cadbatch/internal/params"
	"github.com/spf13/afero"
)

// Environment channel keys consumed by the host's embedded command handler.
const (
	// EnvConfig carries the serialized configuration payload.
	EnvConfig = "CADBATCH_CONFIG"
	// EnvOutputDir carries the directory the host writes result artifacts to.
	EnvOutputDir = "CADBATCH_OUTPUT_DIR"
	// EnvRunTimestamp carries the fixed RFC3339 timestamp of the batch run.
	EnvRunTimestamp = "CADBATCH_RUN_TIMESTAMP"
	// EnvRunID carries the correlation ID of the batch run.
	EnvRunID = "CADBATCH_RUN_ID"
	// EnvDrawingName carries the display name of the current drawing.
	EnvDrawingName = "CADBATCH_DRAWING_NAME"
	// EnvResultFile optionally overrides the result artifact file name.
	EnvResultFile = "CADBATCH_RESULT_FILE"
)

var (
	// ErrSerializeConfig is returned when the materialized configuration cannot be serialized.
	ErrSerializeConfig = errors.New("failed to serialize configuration")
	// ErrEnsureOutputDir is returned when the output directory cannot be created.
	ErrEnsureOutputDir = errors.New("failed to ensure output directory")
)

// Run carries the per-run correlation values transmitted with every invocation.
type Run struct {
	// ID is the batch run correlation ID.
	ID string
	// Timestamp is the fixed RFC3339 start time of the run.
	Timestamp string
}

// NewRun creates the correlation values for one batch run. Every artifact the
// host writes can be traced back to the run that produced it.
func NewRun() Run {
	return Run{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Transport builds and launches host invocations. It does not interpret the
// host's result; classification belongs to the completion detector.
type Transport struct {
	// Fs is the filesystem used to ensure the output directory exists.
	Fs afero.Fs
	// Launcher creates the supervised host process.
	Launcher hostproc.Launcher
	// Host is how to start the external application.
	Host config.Host
	// OutputDir is where the host writes result artifacts.
	OutputDir string
	// Run identifies the batch run.
	Run Run
}

// ArtifactPath computes the expected result artifact path for one drawing,
// deterministically from the output directory and the drawing's display name,
// unless the materialized configuration carries an explicit output name.
func (t *Transport) ArtifactPath(item drawings.Item, m params.Materialized) string {
	name := m.String(params.PropOutputName)
	if name == "" {
		name = strings.TrimSuffix(item.Name, filepath.Ext(item.Name))
	}

	if !strings.EqualFold(filepath.Ext(name), ".json") {
		name += ".json"
	}

	return filepath.Join(t.OutputDir, name)
}

// Invoke launches the host against one drawing and blocks until the process
// exits or ctx is done. It guarantees the output directory exists first.
// The raw exit state is returned unclassified.
func (t *Transport) Invoke(ctx context.Context, item drawings.Item, m params.Materialized) (hostproc.ExitState, error) {
	logger := ctxlog.Logger(ctx).With("drawing", item.Name)

	if err := t.Fs.MkdirAll(t.OutputDir, 0o755); err != nil {
		return hostproc.ExitState{Code: -1}, errors.Join(ErrEnsureOutputDir, err)
	}

	payload, err := m.Payload()
	if err != nil {
		return hostproc.ExitState{Code: -1}, errors.Join(ErrSerializeConfig, err)
	}

	env := map[string]string{
		EnvConfig:       string(payload),
		EnvOutputDir:    t.OutputDir,
		EnvRunTimestamp: t.Run.Timestamp,
		EnvRunID:        t.Run.ID,
		EnvDrawingName:  item.Name,
	}

	if name := m.String(params.PropOutputName); name != "" {
		env[EnvResultFile] = filepath.Base(t.ArtifactPath(item, m))
	}

	spec := hostproc.Spec{
		Path:  t.Host.Path,
		Args:  append(append([]string{}, t.Host.Args...), item.Path),
		Cwd:   t.Host.Cwd,
		Env:   env,
		Label: fmt.Sprintf("cadhost [%s]", item.Name),
	}

	proc := t.Launcher.Launch(spec)

	if err := proc.Start(ctx); err != nil {
		return hostproc.ExitState{Code: -1, Err: err}, nil
	}

	logger.Debug("host invoked", "artifact", t.ArtifactPath(item, m))

	return proc.AwaitExit(ctx), nil
}
