// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_getURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		url       string
		wantErr   error
		wantBytes []byte
	}{
		{
			name:    "empty url returns error",
			url:     "",
			wantErr: ErrGetConfigFile,
		},
		{
			name:      "local file succeeds",
			url:       "./testdata/test.txt",
			wantErr:   nil,
			wantBytes: []byte("this is a test file\n"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()

			bytes, err := getURL(ctx, tc.url)
			if tc.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, bytes)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantBytes, bytes)
			}
		})
	}
}

func Test_splitFileNameFromGetterURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		url          string
		wantURL      string
		wantFileName string
	}{
		{
			name:         "url with subdirectory and file",
			url:          "git::https://example.com/repo//configs/batch.yaml",
			wantURL:      "git::https://example.com/repo//configs",
			wantFileName: "batch.yaml",
		},
		{
			name:         "url with ref query",
			url:          "git::https://example.com/repo//configs/batch.yaml?ref=v1",
			wantURL:      "git::https://example.com/repo//configs?ref=v1",
			wantFileName: "batch.yaml",
		},
		{
			name:         "too few parts",
			url:          "https://example.com/batch.yaml",
			wantURL:      "",
			wantFileName: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotURL, gotFileName := splitFileNameFromGetterURL(tc.url)
			assert.Equal(t, tc.wantURL, gotURL)
			assert.Equal(t, tc.wantFileName, gotFileName)
		})
	}
}

func Test_loadRows(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns nil table", func(t *testing.T) {
		rows, err := loadRows(t.TempDir(), "")
		require.NoError(t, err)
		assert.Nil(t, rows)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := loadRows(t.TempDir(), "nope.csv")
		assert.ErrorIs(t, err, ErrReadRows)
	})

	t.Run("valid csv is read relative to wd", func(t *testing.T) {
		dir := t.TempDir()
		csv := "DrawingFile,CheckProfile,Revision\nbracket.dwg,standard,B\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "rows.csv"), []byte(csv), 0o644))

		rows, err := loadRows(dir, "rows.csv")
		require.NoError(t, err)
		require.NotNil(t, rows)
		assert.Len(t, rows.Rows, 1)
	})
}
