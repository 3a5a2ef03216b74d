// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package check

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// runCheck runs a fresh copy of the command so parse state never leaks
// between tests, with the process exiter stubbed out.
func runCheck(t *testing.T, args ...string) (string, error) {
	t.Helper()

	stubs := gostub.Stub(&cli.OsExiter, func(int) {})

	defer stubs.Reset()

	var out bytes.Buffer

	cmd := *CheckCmd
	cmd.Writer = &out
	cmd.ErrWriter = &out

	err := cmd.Run(context.Background(), append([]string{"check"}, args...))

	return out.String(), err
}

func TestCheckCmd_ValidHeader(t *testing.T) {
	path := writeCSV(t, "DrawingFile,CheckProfile,Revision\nbracket.dwg,standard,B\n")

	out, err := runCheck(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 rows, header ok")
}

func TestCheckCmd_AliasedHeaderWithUnknownColumn(t *testing.T) {
	path := writeCSV(t, "drawing_file,check_profile,rev,Comment\nbracket.dwg,standard,B,checked\n")

	out, err := runCheck(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "ignored columns: Comment")
	assert.Contains(t, out, "header ok")
}

func TestCheckCmd_MissingColumns(t *testing.T) {
	path := writeCSV(t, "DrawingFile,ToleranceMm\nbracket.dwg,0.5\n")

	out, err := runCheck(t, path)
	require.Error(t, err)
	assert.Contains(t, out, "missing required columns: CheckProfile, Revision")
}

func TestCheckCmd_MissingFile(t *testing.T) {
	_, err := runCheck(t, filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, ErrReadFile)
}
