// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package hostproc supervises the external CAD host process.
//
// The host is a GUI application, not a clean subprocess, so supervision is
// kept behind a narrow interface: Start, AwaitExit, ForceTerminate. The
// orchestrator owns the process handle for one job at a time; nothing else
// spawns or signals the host.
package hostproc
