// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package detect infers a job's outcome from filesystem side effects.
//
// The external host runs its command handler modally inside a GUI process
// and cannot report structured success or failure. Completion is therefore
// inferred from the result artifact, with an inverted convention: the host
// writes an artifact only when it has failures to report, so absence of the
// artifact after a clean exit is the success signal. The host's crash path
// writes an error-shaped artifact before propagating the fault, so the same
// presence check covers crashes too.
package detect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/cadbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/cadbatch/internal/drawings"
	"github.com/matt-FFFFFF/cadbatch/internal/hostproc"
	"github.com/spf13/afero"
)

// Status is the classification of one completed invocation.
type Status int

const (
	// Succeeded means the host exited cleanly and left no result artifact.
	Succeeded Status = iota
	// FailedWithOutput means the host recorded failures in a result artifact.
	FailedWithOutput
	// FailedNoOutput means the host exited with a failure code without
	// recording an artifact.
	FailedNoOutput
	// FailedException means the invocation itself faulted: the process could
	// not start, crashed, timed out, or the output directory check failed.
	FailedException
	// Cancelled means the run was cancelled while this job was in flight.
	Cancelled
)

// String implements the Stringer interface for Status.
func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case FailedWithOutput:
		return "failed (recorded)"
	case FailedNoOutput:
		return "failed (no output)"
	case FailedException:
		return "failed (exception)"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Failed reports whether the status counts as a failure in the batch result.
func (s Status) Failed() bool {
	return s == FailedWithOutput || s == FailedNoOutput || s == FailedException
}

// Outcome is the result of one invocation. It is never mutated after creation.
type Outcome struct {
	// Drawing is the input item this outcome belongs to.
	Drawing drawings.Item
	// Status is the classification.
	Status Status
	// Elapsed is the invocation's wall time.
	Elapsed time.Duration
	// Detail is a short human-readable reason for failures.
	Detail string
	// ArtifactPath is set when a result artifact was found.
	ArtifactPath string
}

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultMaxPollWait  = 2 * time.Second
)

// ErrOutputDirInaccessible is returned in the outcome detail when the output
// directory cannot be verified after a clean exit.
var ErrOutputDirInaccessible = errors.New("output directory inaccessible")

// Detector classifies completed invocations by inspecting the filesystem.
type Detector struct {
	// Fs is the filesystem holding the output directory.
	Fs afero.Fs
	// PollInterval is the artifact poll period. Zero means 100ms.
	PollInterval time.Duration
	// MaxPollWait bounds the wait for the host's artifact flush after process
	// exit. Zero means 2s. The wait must be bounded so a hung flush cannot
	// stall the batch.
	MaxPollWait time.Duration
}

// Classify turns a raw exit state into an outcome.
//
// ctx is the run's cancellation context, not the per-item timeout context: a
// kill caused by run cancellation classifies Cancelled with no further
// checks, while a kill caused by the per-item timeout is a FailedException.
func (d *Detector) Classify(ctx context.Context, item drawings.Item, expectedPath string, exit hostproc.ExitState) Outcome {
	out := Outcome{
		Drawing: item,
		Elapsed: exit.Elapsed,
	}

	if exit.Killed {
		if ctx.Err() != nil {
			out.Status = Cancelled
			return out
		}

		out.Status = FailedException
		out.Detail = fmt.Sprintf("invocation timed out after %s", exit.Elapsed.Round(time.Millisecond))

		return out
	}

	present := d.awaitArtifact(ctx, expectedPath)

	if exit.Err != nil && !present {
		out.Status = FailedException
		out.Detail = exit.Err.Error()

		return out
	}

	if present {
		out.Status = FailedWithOutput
		out.ArtifactPath = expectedPath
		out.Detail = d.artifactDetail(ctx, expectedPath)

		return out
	}

	if exit.Code != 0 {
		out.Status = FailedNoOutput
		out.Detail = fmt.Sprintf("host exited with code %d and wrote no result artifact", exit.Code)

		return out
	}

	// Absence means success, but only if absence is trustworthy: a clean exit
	// with an output directory that became unreadable mid-run must not pass.
	if err := d.outputDirAccessible(expectedPath); err != nil {
		out.Status = FailedException
		out.Detail = errors.Join(ErrOutputDirInaccessible, err).Error()

		return out
	}

	out.Status = Succeeded

	return out
}

// awaitArtifact polls for the expected artifact for up to MaxPollWait. The
// host's artifact flush is not synchronous with process exit.
func (d *Detector) awaitArtifact(ctx context.Context, path string) bool {
	interval := d.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	maxWait := d.MaxPollWait
	if maxWait <= 0 {
		maxWait = defaultMaxPollWait
	}

	deadline := time.Now().Add(maxWait)

	for {
		if ok, err := afero.Exists(d.Fs, path); err == nil && ok {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}

func (d *Detector) artifactDetail(ctx context.Context, path string) string {
	data, err := afero.ReadFile(d.Fs, path)
	if err != nil {
		ctxlog.Debug(ctx, "failed to read result artifact", "path", path, "error", err)
		return "host recorded failures (artifact unreadable)"
	}

	return summarizeArtifact(data)
}

func (d *Detector) outputDirAccessible(expectedPath string) error {
	dir := dirOf(expectedPath)

	fi, err := d.Fs.Stat(dir)
	if err != nil {
		return err
	}

	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	f, err := d.Fs.Open(dir)
	if err != nil {
		return err
	}

	return f.Close()
}
