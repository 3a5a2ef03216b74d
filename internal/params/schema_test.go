// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		column string
		want   string
		ok     bool
	}{
		{"DrawingFile", PropDrawingFile, true},
		{"Drawing", PropDrawingFile, true},
		{"drawing", PropDrawingFile, true},
		{"drawing_file", PropDrawingFile, true},
		{"Tolerance (mm)", PropToleranceMm, true},
		{"Checked By", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			e, ok := Resolve(tt.column)
			assert.Equal(t, tt.ok, ok)

			if ok {
				assert.Equal(t, tt.want, e.Canonical)
			}
		})
	}
}

func TestValidateRequiredColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []string
	}{
		{
			name:    "all present",
			headers: []string{"DrawingFile", "CheckProfile", "Revision", "Layers"},
			want:    nil,
		},
		{
			name:    "aliases count",
			headers: []string{"Drawing", "Profile", "Rev"},
			want:    nil,
		},
		{
			name:    "one missing",
			headers: []string{"DrawingFile", "CheckProfile"},
			want:    []string{PropRevision},
		},
		{
			name:    "all missing",
			headers: []string{"Notes"},
			want:    []string{PropDrawingFile, PropCheckProfile, PropRevision},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRequiredColumns(tt.headers))
		})
	}
}
