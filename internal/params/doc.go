// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package params materializes the typed parameter set for one drawing job.
//
// It merges a shared base configuration with per-drawing CSV row overrides,
// resolving raw column names against a static schema and coercing raw cell
// values to the schema type. The result is serialized to a JSON payload for
// transmission to the external CAD host over the environment channel.
package params
