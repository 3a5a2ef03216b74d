// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the cadbatch run definition from YAML.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
)

var (
	// ErrInvalidYaml is returned when the configuration cannot be parsed.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrNoHostPath is returned when the external host executable path is missing.
	ErrNoHostPath = errors.New("no host executable path specified")
	// ErrNoOutputDir is returned when the output directory is missing.
	ErrNoOutputDir = errors.New("no output directory specified")
)

const defaultItemTimeout = 10 * time.Minute

// Host describes how to launch the external CAD host.
type Host struct {
	// Path is the host executable.
	Path string `yaml:"path"`
	// Args are passed to the host before the drawing file path, which is
	// always appended as the final argument.
	Args []string `yaml:"args"`
	// Cwd is the working directory for the host process.
	Cwd string `yaml:"cwd"`
}

// Definition represents the root configuration structure.
type Definition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Host        Host   `yaml:"host"`
	// OutputDir is where the host writes result artifacts.
	OutputDir string `yaml:"output_dir"`
	// Drawings is a glob pattern selecting the input drawings.
	Drawings string `yaml:"drawings"`
	// RowsFile is the CSV with per-drawing overrides.
	RowsFile string `yaml:"rows_file"`
	// ItemTimeout bounds each invocation. Zero means the default of 10m.
	ItemTimeout time.Duration `yaml:"item_timeout"`
	// Defaults is the shared base configuration applied before row overrides.
	// Keys are canonical property names.
	Defaults map[string]any `yaml:"defaults"`
}

// Load parses a run definition from YAML and validates it.
func Load(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	if def.Host.Path == "" {
		return nil, ErrNoHostPath
	}

	if def.OutputDir == "" {
		return nil, ErrNoOutputDir
	}

	if def.ItemTimeout <= 0 {
		def.ItemTimeout = defaultItemTimeout
	}

	if def.Defaults == nil {
		def.Defaults = map[string]any{}
	}

	return &def, nil
}
