// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package params

import (
	"strings"
)

// ValueType is the definitive wire type of a schema property.
type ValueType int

const (
	// TypeString is a plain string property, trimmed of surrounding whitespace.
	TypeString ValueType = iota
	// TypeBool is a boolean property. Ambiguous input degrades to false.
	TypeBool
	// TypeList is a list-of-string property.
	TypeList
	// TypeNumber is a best-effort numeric property. Unparseable input stays a string.
	TypeNumber
)

// String implements the Stringer interface for ValueType.
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeList:
		return "list"
	case TypeNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Entry describes one schema property: its canonical name as the external
// host's schema expects it (casing preserved exactly), its wire type, an
// optional engine default, and the CSV column aliases that resolve to it.
type Entry struct {
	Canonical string
	Type      ValueType
	Default   any
	Aliases   []string
}

// Canonical property names for the external host's configuration schema.
const (
	PropDrawingFile       = "DrawingFile"
	PropCheckProfile      = "CheckProfile"
	PropRevision          = "Revision"
	PropExtractAttributes = "ExtractAttributes"
	PropExtractDimensions = "ExtractDimensions"
	PropLayerFilters      = "LayerFilters"
	PropPluginVersion     = "PluginVersion"
	PropToleranceMm       = "ToleranceMm"
	PropSheetNumbers      = "SheetNumbers"
	PropTitleBlockName    = "TitleBlockName"
	PropOutputName        = "OutputName"
)

// DefaultPluginVersion is the plugin version transmitted when no override is present.
const DefaultPluginVersion = "2024.1"

// entries is the process-wide schema. It is initialized once and never mutated.
var entries = []Entry{
	{Canonical: PropDrawingFile, Type: TypeString, Aliases: []string{"Drawing", "File"}},
	{Canonical: PropCheckProfile, Type: TypeString, Aliases: []string{"Profile"}},
	{Canonical: PropRevision, Type: TypeString, Aliases: []string{"Rev"}},
	{Canonical: PropExtractAttributes, Type: TypeBool, Default: true, Aliases: []string{"Extract Attributes", "Attributes"}},
	{Canonical: PropExtractDimensions, Type: TypeBool, Default: true, Aliases: []string{"Extract Dimensions", "Dimensions"}},
	{Canonical: PropLayerFilters, Type: TypeList, Default: []string{}, Aliases: []string{"Layers", "Layer Filters"}},
	{Canonical: PropPluginVersion, Type: TypeString, Default: DefaultPluginVersion, Aliases: []string{"Plugin Version"}},
	{Canonical: PropToleranceMm, Type: TypeNumber, Aliases: []string{"Tolerance", "Tolerance (mm)"}},
	{Canonical: PropSheetNumbers, Type: TypeList, Aliases: []string{"Sheets"}},
	{Canonical: PropTitleBlockName, Type: TypeString, Aliases: []string{"Title Block"}},
	{Canonical: PropOutputName, Type: TypeString, Aliases: []string{"Output", "Result Name"}},
}

// requiredColumns are the column names that must be present in the CSV header
// before any row is processed.
var requiredColumns = []string{
	PropDrawingFile,
	PropCheckProfile,
	PropRevision,
}

var byColumn map[string]Entry

func init() {
	byColumn = make(map[string]Entry, len(entries)*2)
	for _, e := range entries {
		byColumn[normalize(e.Canonical)] = e
		for _, a := range e.Aliases {
			byColumn[normalize(a)] = e
		}
	}
}

// normalize folds case and removes spaces and underscores, so that
// "DrawingFile", "drawing_file" and "Drawing File" all resolve identically.
func normalize(column string) string {
	column = strings.TrimSpace(column)
	column = strings.ReplaceAll(column, " ", "")
	column = strings.ReplaceAll(column, "_", "")

	return strings.ToLower(column)
}

// Resolve maps a raw CSV column name to its schema entry. The match is
// case-insensitive and ignores spaces and underscores, across canonical
// names and aliases. Unknown columns do not resolve; they are not an error.
func Resolve(column string) (Entry, bool) {
	e, ok := byColumn[normalize(column)]
	return e, ok
}

// ValidateRequiredColumns returns the required column names missing from the
// given header set, in schema order. An empty result means the headers are valid.
func ValidateRequiredColumns(headers []string) []string {
	present := make(map[string]struct{}, len(headers))

	for _, h := range headers {
		if e, ok := Resolve(h); ok {
			present[e.Canonical] = struct{}{}
		}
	}

	var missing []string

	for _, req := range requiredColumns {
		if _, ok := present[req]; !ok {
			missing = append(missing, req)
		}
	}

	return missing
}
