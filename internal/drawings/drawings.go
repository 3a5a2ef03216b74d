// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package drawings enumerates the input drawings for a batch run.
package drawings

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Item is one unit of batch work. It is immutable once enumerated; its
// identity is the source path.
type Item struct {
	// Path is the full path to the drawing file.
	Path string
	// Name is the display name, the file's base name.
	Name string
}

// List returns the drawings matching the glob pattern, in lexical order.
// Enumeration order is the processing order for the whole batch.
func List(ctx context.Context, fs afero.Fs, workingDirectory, pattern string) ([]Item, error) {
	searchPattern := pattern
	if !filepath.IsAbs(pattern) {
		searchPattern = filepath.Join(workingDirectory, pattern)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	matches, err := afero.Glob(fs, searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list drawings with pattern %s: %w", pattern, err)
	}

	sort.Strings(matches)

	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		items = append(items, Item{
			Path: m,
			Name: filepath.Base(m),
		})
	}

	return items, nil
}
