// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package drawings

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/input/b.dwg", []byte{}, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/input/a.dwg", []byte{}, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/input/notes.txt", []byte{}, 0o644))

	items, err := List(context.Background(), fs, "/input", "*.dwg")
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "a.dwg", items[0].Name, "items are enumerated in lexical order")
	assert.Equal(t, "/input/a.dwg", items[0].Path)
	assert.Equal(t, "b.dwg", items[1].Name)
}

func TestList_AbsolutePattern(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/elsewhere/c.dwg", []byte{}, 0o644))

	items, err := List(context.Background(), fs, "/input", "/elsewhere/*.dwg")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c.dwg", items[0].Name)
}

func TestList_NoMatches(t *testing.T) {
	items, err := List(context.Background(), afero.NewMemMapFs(), "/input", "*.dwg")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestList_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := List(ctx, afero.NewMemMapFs(), "/input", "*.dwg")
	assert.ErrorIs(t, err, context.Canceled)
}
