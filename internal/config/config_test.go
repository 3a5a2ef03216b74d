// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYaml = `
name: nightly checks
host:
  path: /opt/cadhost/bin/cadhost
  args: ["-nosplash", "-batch"]
output_dir: ./results
drawings: "drawings/*.dwg"
rows_file: overrides.csv
item_timeout: 5m
defaults:
  CheckProfile: standard
  ToleranceMm: 0.1
`

func TestLoad_Valid(t *testing.T) {
	def, err := Load([]byte(validYaml))
	require.NoError(t, err)

	assert.Equal(t, "nightly checks", def.Name)
	assert.Equal(t, "/opt/cadhost/bin/cadhost", def.Host.Path)
	assert.Equal(t, []string{"-nosplash", "-batch"}, def.Host.Args)
	assert.Equal(t, "./results", def.OutputDir)
	assert.Equal(t, 5*time.Minute, def.ItemTimeout)
	assert.Equal(t, "standard", def.Defaults["CheckProfile"])
}

func TestLoad_DefaultTimeout(t *testing.T) {
	def, err := Load([]byte("host:\n  path: /bin/host\noutput_dir: out\n"))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, def.ItemTimeout)
	assert.NotNil(t, def.Defaults)
}

func TestLoad_MissingHostPath(t *testing.T) {
	_, err := Load([]byte("output_dir: out\n"))
	assert.ErrorIs(t, err, ErrNoHostPath)
}

func TestLoad_MissingOutputDir(t *testing.T) {
	_, err := Load([]byte("host:\n  path: /bin/host\n"))
	assert.ErrorIs(t, err, ErrNoOutputDir)
}

func TestLoad_InvalidYaml(t *testing.T) {
	_, err := Load([]byte("host: [unclosed"))
	assert.ErrorIs(t, err, ErrInvalidYaml)
}
