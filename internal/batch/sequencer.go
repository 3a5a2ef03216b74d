// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/cadbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/cadbatch/internal/detect"
	"github.com/matt-FFFFFF/cadbatch/internal/drawings"
	"github.com/matt-FFFFFF/cadbatch/internal/invoke"
	"github.com/matt-FFFFFF/cadbatch/internal/params"
	"github.com/matt-FFFFFF/cadbatch/internal/progress"
	"github.com/matt-FFFFFF/cadbatch/internal/rowsource"
)

// ErrAlreadyRunning is returned when ProcessAll is called while a run is active.
var ErrAlreadyRunning = errors.New("a batch run is already active")

// ProgressFunc receives progress updates: the numerator, denominator and the
// display name of the current drawing. The numerator is monotonically
// non-decreasing across a run.
type ProgressFunc func(current, total int, drawing string)

// LogFunc receives one log line per noteworthy lifecycle event. It is called
// from the orchestration goroutine.
type LogFunc func(line string)

// Hooks carries the caller's observation points for one run. Any field may be
// left nil.
type Hooks struct {
	OnLog      LogFunc
	OnProgress ProgressFunc
	Reporter   progress.Reporter
}

// Sequencer drives the per-drawing jobs of a batch run, one at a time.
// Only one run may be active per sequencer instance.
type Sequencer struct {
	// Transport launches host invocations.
	Transport *invoke.Transport
	// Detector classifies completed invocations.
	Detector *detect.Detector
	// Rows holds the per-drawing CSV overrides. May be nil.
	Rows *rowsource.Table
	// Base is the shared base configuration applied before row overrides.
	Base map[string]any
	// ItemTimeout bounds each invocation. Zero means no per-item timeout.
	ItemTimeout time.Duration

	running atomic.Bool
}

// ProcessAll runs every item in input order and returns the finalized result.
//
// Cancellation is checked before each item and honored mid-invocation by
// terminating the host process; the in-flight job is abandoned and excluded
// from both the succeeded and failed lists. A per-item failure never stops
// the run. The returned error is non-nil only for sequencer-level faults
// such as a second concurrent run; per-item faults are recorded in the
// result instead.
func (s *Sequencer) ProcessAll(ctx context.Context, items []drawings.Item, hooks Hooks) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	logf := hooks.OnLog
	if logf == nil {
		logf = func(string) {}
	}

	progressf := hooks.OnProgress
	if progressf == nil {
		progressf = func(int, int, string) {}
	}

	reporter := hooks.Reporter
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	total := len(items)
	rep := NewReporter()
	cancelled := false

	logf(fmt.Sprintf("starting batch run %s: %d drawings", s.Transport.Run.ID, total))
	reporter.Report(progress.Event{
		Type:      progress.EventBatchStarted,
		Total:     total,
		Timestamp: time.Now(),
	})

	for i, item := range items {
		select {
		case <-ctx.Done():
			cancelled = true

			logf(fmt.Sprintf("cancellation requested, stopping before drawing %d of %d", i+1, total))
		default:
		}

		if cancelled {
			break
		}

		logf(fmt.Sprintf("processing drawing %d of %d: %s", i+1, total, item.Name))
		progressf(i+1, total, item.Name)
		reporter.Report(progress.Event{
			Type:      progress.EventItemStarted,
			Drawing:   item.Name,
			Current:   i + 1,
			Total:     total,
			Timestamp: time.Now(),
		})

		out := s.runItem(ctx, item)

		if out.Status == detect.Cancelled {
			cancelled = true

			logf(fmt.Sprintf("cancelled while processing %s; job abandoned", item.Name))

			break
		}

		rep.Record(out)
		logf(outcomeLine(out))
		progressf(i+1, total, item.Name)
		reporter.Report(progress.Event{
			Type:      progress.EventItemFinished,
			Drawing:   item.Name,
			Current:   i + 1,
			Total:     total,
			Message:   out.Detail,
			Failed:    out.Status.Failed(),
			Timestamp: time.Now(),
		})
	}

	res := rep.Finalize(total, cancelled)

	logf(summaryLine(res))
	reporter.Report(progress.Event{
		Type:      progress.EventBatchFinished,
		Current:   res.Attempted,
		Total:     total,
		Message:   summaryLine(res),
		Failed:    res.HasFailures(),
		Timestamp: time.Now(),
	})

	return res, nil
}

// runItem materializes, invokes and classifies one drawing. No fault escapes:
// anything not already translated into an outcome becomes a FailedException
// so the batch loop always proceeds to the next item.
func (s *Sequencer) runItem(ctx context.Context, item drawings.Item) (out detect.Outcome) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			ctxlog.Error(ctx, "panic in invocation path", "drawing", item.Name, "panic", r)

			out = detect.Outcome{
				Drawing: item,
				Status:  detect.FailedException,
				Detail:  fmt.Sprintf("panic in invocation path: %v", r),
				Elapsed: time.Since(started),
			}
		}
	}()

	var row rowsource.Row

	if s.Rows != nil {
		if r, ok := s.Rows.ForDrawing(item.Name); ok {
			row = r
		}
	}

	m := params.Build(row, s.Base)
	artifactPath := s.Transport.ArtifactPath(item, m)

	itemCtx := ctx
	cancel := context.CancelFunc(func() {})

	if s.ItemTimeout > 0 {
		itemCtx, cancel = context.WithTimeout(ctx, s.ItemTimeout)
	}

	defer cancel()

	exit, err := s.Transport.Invoke(itemCtx, item, m)
	if err != nil {
		return detect.Outcome{
			Drawing: item,
			Status:  detect.FailedException,
			Detail:  err.Error(),
			Elapsed: time.Since(started),
		}
	}

	if exit.Elapsed == 0 {
		exit.Elapsed = time.Since(started)
	}

	return s.Detector.Classify(ctx, item, artifactPath, exit)
}

func outcomeLine(out detect.Outcome) string {
	line := fmt.Sprintf("%s: %s in %s", out.Drawing.Name, out.Status, out.Elapsed.Round(time.Millisecond))

	if out.Detail != "" {
		line = fmt.Sprintf("%s (%s)", line, out.Detail)
	}

	return line
}

func summaryLine(res *Result) string {
	_, failed := failedNames(res)

	switch {
	case res.Cancelled:
		return fmt.Sprintf("batch cancelled: %d of %d attempted, %d succeeded, %d failed, %d never attempted",
			res.Attempted, res.Total, len(res.Succeeded), len(res.Failed), res.Total-res.Attempted)
	case res.HasFailures():
		return fmt.Sprintf("batch complete: %d succeeded, %d failed [%s]",
			len(res.Succeeded), len(res.Failed), strings.Join(failed, ", "))
	default:
		return fmt.Sprintf("batch complete: all %d succeeded", len(res.Succeeded))
	}
}

func failedNames(res *Result) (succeeded, failed []string) {
	for _, out := range res.Succeeded {
		succeeded = append(succeeded, out.Drawing.Name)
	}

	for _, out := range res.Failed {
		failed = append(failed, out.Drawing.Name)
	}

	return succeeded, failed
}
