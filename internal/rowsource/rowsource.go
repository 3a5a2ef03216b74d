// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package rowsource reads per-drawing override rows from CSV.
//
// The CSV is the upstream collaborator's format: a header row of column
// names followed by one row per drawing. Rows reach the materializer as
// plain column-name to raw-value mappings.
package rowsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/cadbatch/internal/params"
)

var (
	// ErrReadCsv is returned when the CSV cannot be parsed.
	ErrReadCsv = errors.New("failed to read CSV")
	// ErrNoHeader is returned when the CSV has no header row.
	ErrNoHeader = errors.New("CSV has no header row")
)

// Row is one drawing's raw overrides, keyed by the raw column name.
type Row map[string]string

// Table holds the parsed CSV: the header row and one Row per record.
type Table struct {
	Headers []string
	Rows    []Row
}

// Read parses CSV data into a Table. Records shorter than the header are
// permitted; missing cells are simply absent from the row map.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadCsv, err)
	}

	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	headers := records[0]
	table := &Table{
		Headers: headers,
		Rows:    make([]Row, 0, len(records)-1),
	}

	for _, rec := range records[1:] {
		row := make(Row, len(headers))

		for i, h := range headers {
			if i >= len(rec) {
				break
			}

			row[h] = rec[i]
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// ForDrawing returns the row whose drawing-file cell matches the given
// drawing, compared by base name, case-insensitively. Drawings without a
// row run on the base configuration alone, so a missing row is not an error.
func (t *Table) ForDrawing(drawing string) (Row, bool) {
	want := strings.ToLower(filepath.Base(drawing))

	for _, row := range t.Rows {
		for column, cell := range row {
			e, ok := params.Resolve(column)
			if !ok || e.Canonical != params.PropDrawingFile {
				continue
			}

			if strings.ToLower(filepath.Base(strings.TrimSpace(cell))) == want {
				return row, true
			}
		}
	}

	return nil, false
}
