// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoke

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/cadbatch/internal/config"
	"github.com/matt-FFFFFF/cadbatch/internal/drawings"
	"github.com/matt-FFFFFF/cadbatch/internal/hostproc"
	"github.com/matt-FFFFFF/cadbatch/internal/params"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLauncher struct {
	spec hostproc.Spec
	exit hostproc.ExitState
}

func (s *stubLauncher) Launch(spec hostproc.Spec) hostproc.Process {
	s.spec = spec
	return &stubProcess{exit: s.exit}
}

type stubProcess struct {
	exit hostproc.ExitState
}

func (s *stubProcess) Start(context.Context) error { return nil }

func (s *stubProcess) AwaitExit(context.Context) hostproc.ExitState { return s.exit }

func (s *stubProcess) ForceTerminate() {}

func newTransport(launcher hostproc.Launcher) *Transport {
	return &Transport{
		Fs:        afero.NewMemMapFs(),
		Launcher:  launcher,
		Host:      config.Host{Path: "/opt/cadhost/bin/cadhost", Args: []string{"-batch"}},
		OutputDir: "/results",
		Run:       Run{ID: "run-1", Timestamp: "2025-06-01T00:00:00Z"},
	}
}

func TestArtifactPath(t *testing.T) {
	tr := newTransport(nil)
	item := drawings.Item{Path: "/input/bracket.dwg", Name: "bracket.dwg"}

	assert.Equal(t, filepath.Join("/results", "bracket.json"), tr.ArtifactPath(item, params.Materialized{}))
}

func TestArtifactPath_OutputNameOverride(t *testing.T) {
	tr := newTransport(nil)
	item := drawings.Item{Path: "/input/bracket.dwg", Name: "bracket.dwg"}

	m := params.Materialized{params.PropOutputName: "custom-report"}
	assert.Equal(t, filepath.Join("/results", "custom-report.json"), tr.ArtifactPath(item, m))

	m = params.Materialized{params.PropOutputName: "report.JSON"}
	assert.Equal(t, filepath.Join("/results", "report.JSON"), tr.ArtifactPath(item, m))
}

func TestInvoke_EnvChannel(t *testing.T) {
	launcher := &stubLauncher{exit: hostproc.ExitState{Code: 0}}
	tr := newTransport(launcher)
	item := drawings.Item{Path: "/input/bracket.dwg", Name: "bracket.dwg"}
	m := params.Build(nil, map[string]any{params.PropCheckProfile: "standard"})

	state, err := tr.Invoke(context.Background(), item, m)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Code)

	env := launcher.spec.Env
	assert.Contains(t, env[EnvConfig], `"CheckProfile":"standard"`)
	assert.Equal(t, "/results", env[EnvOutputDir])
	assert.Equal(t, "run-1", env[EnvRunID])
	assert.Equal(t, "2025-06-01T00:00:00Z", env[EnvRunTimestamp])
	assert.Equal(t, "bracket.dwg", env[EnvDrawingName])
	assert.NotContains(t, env, EnvResultFile, "no override means no result file variable")

	assert.Equal(t, "/opt/cadhost/bin/cadhost", launcher.spec.Path)
	assert.Equal(t, []string{"-batch", "/input/bracket.dwg"}, launcher.spec.Args, "drawing path is the final argument")
}

func TestInvoke_ResultFileOverride(t *testing.T) {
	launcher := &stubLauncher{exit: hostproc.ExitState{Code: 0}}
	tr := newTransport(launcher)
	item := drawings.Item{Path: "/input/bracket.dwg", Name: "bracket.dwg"}
	m := params.Materialized{params.PropOutputName: "custom"}

	_, err := tr.Invoke(context.Background(), item, m)
	require.NoError(t, err)

	assert.Equal(t, "custom.json", launcher.spec.Env[EnvResultFile])
}

func TestInvoke_EnsuresOutputDir(t *testing.T) {
	launcher := &stubLauncher{exit: hostproc.ExitState{Code: 0}}
	tr := newTransport(launcher)

	_, err := tr.Invoke(context.Background(), drawings.Item{Path: "/input/a.dwg", Name: "a.dwg"}, params.Materialized{})
	require.NoError(t, err)

	ok, err := afero.DirExists(tr.Fs, "/results")
	require.NoError(t, err)
	assert.True(t, ok)

	// Idempotent when the directory already exists.
	_, err = tr.Invoke(context.Background(), drawings.Item{Path: "/input/b.dwg", Name: "b.dwg"}, params.Materialized{})
	assert.NoError(t, err)
}

func TestInvoke_ReadOnlyFs(t *testing.T) {
	launcher := &stubLauncher{exit: hostproc.ExitState{Code: 0}}
	tr := newTransport(launcher)
	tr.Fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := tr.Invoke(context.Background(), drawings.Item{Path: "/input/a.dwg", Name: "a.dwg"}, params.Materialized{})
	assert.ErrorIs(t, err, ErrEnsureOutputDir)
}

func TestInvoke_StartFailure(t *testing.T) {
	tr := newTransport(hostproc.OSLauncher{})
	tr.Host = config.Host{Path: "/not/a/real/host"}
	tr.Fs = afero.NewMemMapFs()

	state, err := tr.Invoke(context.Background(), drawings.Item{Path: "/input/a.dwg", Name: "a.dwg"}, params.Materialized{})
	require.NoError(t, err, "start failures are reported in the exit state, not as transport errors")
	assert.Equal(t, -1, state.Code)
	assert.ErrorIs(t, state.Err, hostproc.ErrCouldNotStartProcess)
}
