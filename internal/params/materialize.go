// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package params

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Materialized is the fully resolved, typed configuration for one drawing job.
// Keys are canonical property names with their original casing preserved, as
// the external host's schema matches on them exactly.
type Materialized map[string]any

// Build merges rowOverrides into a copy of baseConfig according to the static
// schema. It is a pure function of its inputs.
//
// Engine defaults are injected for any schema property with a default that is
// absent from baseConfig. Row cells that are empty or whitespace-only are
// skipped. Columns that resolve to no schema entry are silently ignored.
func Build(rowOverrides map[string]string, baseConfig map[string]any) Materialized {
	m := make(Materialized, len(baseConfig)+len(entries))

	for k, v := range baseConfig {
		m[k] = v
	}

	for _, e := range entries {
		if e.Default == nil {
			continue
		}

		if _, ok := m[e.Canonical]; !ok {
			m[e.Canonical] = e.Default
		}
	}

	for column, raw := range rowOverrides {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		e, ok := Resolve(column)
		if !ok {
			continue
		}

		m[e.Canonical] = coerce(raw, e.Type)
	}

	return m
}

// Payload serializes the materialized configuration to its JSON wire form.
// encoding/json sorts map keys, so identical inputs yield identical bytes.
func (m Materialized) Payload() ([]byte, error) {
	return json.Marshal(m)
}

// String returns the string value of a property, or the empty string if the
// property is absent or not a string.
func (m Materialized) String(key string) string {
	s, _ := m[key].(string)
	return s
}

func coerce(raw string, t ValueType) any {
	switch t {
	case TypeBool:
		return coerceBool(raw)
	case TypeList:
		return coerceList(raw)
	case TypeNumber:
		return coerceNumber(raw)
	default:
		return strings.TrimSpace(raw)
	}
}

// coerceBool converts a raw cell to a boolean. Anything other than the exact
// true spellings degrades to false, it never errors.
func coerceBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true
	default:
		return false
	}
}

// coerceList converts a raw cell to a list of strings.
//
// Bracket-delimited input is parsed as a JSON array of strings; a parse
// failure degrades to an empty list. Otherwise a comma-separated cell is
// split, trimmed, stripped of surrounding quotes, and empty elements are
// dropped. A plain value becomes a one-element list.
func coerceList(raw string) []string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return []string{}
		}

		return list
	}

	if !strings.Contains(raw, ",") {
		return []string{raw}
	}

	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)

		if p == "" {
			continue
		}

		list = append(list, p)
	}

	return list
}

// coerceNumber attempts a float parse. The schema does not guarantee numeric
// type on the wire, so unparseable input keeps the original string verbatim.
func coerceNumber(raw string) any {
	raw = strings.TrimSpace(raw)

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}

	return f
}
