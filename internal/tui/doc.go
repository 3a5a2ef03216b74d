// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a real-time terminal user interface for monitoring a
// batch run. It displays one line per drawing with a status indicator, the
// elapsed time and the failure detail, driven by the run's progress event
// stream.
//
// The TUI owns the terminal while active, so log output is redirected to a
// plain writer for the duration of the run.
package tui
