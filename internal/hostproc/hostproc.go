// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package hostproc

import (
	"context"
	"time"
)

// Spec describes one invocation of the external host.
type Spec struct {
	// Path is the host executable full path.
	Path string
	// Args are the arguments to the host, not including the executable name.
	Args []string
	// Cwd is the working directory for the host process.
	Cwd string
	// Env holds additional environment variables, appended to the parent's.
	Env map[string]string
	// Label identifies the invocation in logs.
	Label string
}

// ExitState describes how a host process terminated.
type ExitState struct {
	// Code is the process exit code, or -1 if the process was killed or
	// failed to run to completion.
	Code int
	// Err is the supervision error, if any. A non-zero exit code alone does
	// not produce an error.
	Err error
	// Killed reports that the supervisor terminated the process, either
	// because the context was done or a duplicate signal was received.
	Killed bool
	// Stdout and Stderr hold the captured output, capped at the buffer limit.
	Stdout []byte
	Stderr []byte
	// Elapsed is the wall time from start to exit.
	Elapsed time.Duration
}

// Process is the narrow supervision interface over one external host invocation.
// Implementations must be used for a single invocation only.
type Process interface {
	// Start launches the process. It returns an error if the process could
	// not be started; Start does not wait for completion.
	Start(ctx context.Context) error
	// AwaitExit blocks until the process exits or the context is done. When
	// the context is done first, the process is killed and the returned state
	// has Killed set.
	AwaitExit(ctx context.Context) ExitState
	// ForceTerminate kills the process if it is still running. It is safe to
	// call at any time, including after exit.
	ForceTerminate()
}

// Launcher creates a Process for a Spec. It exists so the orchestrator can be
// tested with a stub host.
type Launcher interface {
	Launch(spec Spec) Process
}

// OSLauncher launches real operating system processes.
type OSLauncher struct{}

// Launch implements the Launcher interface.
func (OSLauncher) Launch(spec Spec) Process {
	return NewOSProcess(spec)
}
