// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package rowsource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCsv = `DrawingFile,CheckProfile,Revision,Layers
bracket.dwg,strict,B,"walls, doors"
frame.dwg,standard,A,
`

func TestRead(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCsv))
	require.NoError(t, err)

	assert.Equal(t, []string{"DrawingFile", "CheckProfile", "Revision", "Layers"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "bracket.dwg", table.Rows[0]["DrawingFile"])
	assert.Equal(t, "walls, doors", table.Rows[0]["Layers"])
	assert.Equal(t, "", table.Rows[1]["Layers"])
}

func TestRead_ShortRecords(t *testing.T) {
	table, err := Read(strings.NewReader("DrawingFile,Revision\na.dwg\n"))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "a.dwg", table.Rows[0]["DrawingFile"])
	assert.NotContains(t, table.Rows[0], "Revision")
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestForDrawing(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCsv))
	require.NoError(t, err)

	row, ok := table.ForDrawing("/input/drawings/BRACKET.DWG")
	require.True(t, ok)
	assert.Equal(t, "strict", row["CheckProfile"])

	_, ok = table.ForDrawing("missing.dwg")
	assert.False(t, ok)
}

func TestForDrawing_AliasColumn(t *testing.T) {
	table, err := Read(strings.NewReader("Drawing,Rev\nplate.dwg,C\n"))
	require.NoError(t, err)

	row, ok := table.ForDrawing("plate.dwg")
	require.True(t, ok)
	assert.Equal(t, "C", row["Rev"])
}
