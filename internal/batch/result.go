// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/cadbatch/internal/color"
	"github.com/matt-FFFFFF/cadbatch/internal/detect"
)

// Result is the aggregate outcome of one batch run. It is immutable once
// returned by the sequencer.
type Result struct {
	// Succeeded holds the outcomes of successful items, in input order.
	Succeeded []detect.Outcome
	// Failed holds the outcomes of failed items, in input order.
	Failed []detect.Outcome
	// Cancelled reports that the run stopped on a cancellation request.
	Cancelled bool
	// Attempted is the number of items that ran to an outcome. On a
	// cancelled run, items after this point were never attempted.
	Attempted int
	// Total is the number of items in the run.
	Total int
	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration
	// Err aggregates the per-item failure reasons, or nil if none failed.
	Err error
}

// HasFailures reports whether any attempted item failed.
func (r *Result) HasFailures() bool {
	return len(r.Failed) > 0
}

// WriteText writes a human-readable summary of the run to w.
func (r *Result) WriteText(w io.Writer) error {
	for _, out := range r.Succeeded {
		if err := writeOutcomeLine(w, out); err != nil {
			return err
		}
	}

	for _, out := range r.Failed {
		if err := writeOutcomeLine(w, out); err != nil {
			return err
		}
	}

	var err error

	switch {
	case r.Cancelled:
		_, err = fmt.Fprintf(w, "\n%s run cancelled: %d of %d attempted, %d succeeded, %d failed, %d never attempted (%s)\n",
			color.Colorize("~", color.FgYellow),
			r.Attempted, r.Total, len(r.Succeeded), len(r.Failed), r.Total-r.Attempted,
			r.Elapsed.Round(time.Millisecond))
	case r.HasFailures():
		_, err = fmt.Fprintf(w, "\n%s %d of %d drawings failed (%s)\n",
			color.Colorize("✗", color.FgRed),
			len(r.Failed), r.Total, r.Elapsed.Round(time.Millisecond))
	default:
		_, err = fmt.Fprintf(w, "\n%s all %d drawings succeeded (%s)\n",
			color.Colorize("✓", color.FgGreen),
			r.Total, r.Elapsed.Round(time.Millisecond))
	}

	return err
}

func writeOutcomeLine(w io.Writer, out detect.Outcome) error {
	mark := color.Colorize("✓", color.FgGreen)
	line := fmt.Sprintf("%s (%s)", out.Drawing.Name, out.Elapsed.Round(time.Millisecond))

	if out.Status.Failed() {
		mark = color.Colorize("✗", color.FgRed)
		line = fmt.Sprintf("%s: %s", line, out.Status)

		if out.Detail != "" {
			line = fmt.Sprintf("%s: %s", line, out.Detail)
		}
	}

	_, err := fmt.Fprintf(w, "%s %s\n", mark, line)

	return err
}

// Reporter accumulates job outcomes for one run. The sequencer is the only
// writer; readers receive snapshots or the finalized immutable result.
type Reporter struct {
	succeeded []detect.Outcome
	failed    []detect.Outcome
	start     time.Time
}

// NewReporter creates a reporter for a run starting now.
func NewReporter() *Reporter {
	return &Reporter{start: time.Now()}
}

// Record appends one outcome. Outcomes arrive in input order and cancelled
// outcomes are never recorded; the sequencer excludes them.
func (r *Reporter) Record(out detect.Outcome) {
	if out.Status.Failed() {
		r.failed = append(r.failed, out)
		return
	}

	r.succeeded = append(r.succeeded, out)
}

// Snapshot returns copies of the succeeded and failed name lists so far.
func (r *Reporter) Snapshot() (succeeded, failed []string) {
	succeeded = make([]string, 0, len(r.succeeded))
	for _, out := range r.succeeded {
		succeeded = append(succeeded, out.Drawing.Name)
	}

	failed = make([]string, 0, len(r.failed))
	for _, out := range r.failed {
		failed = append(failed, out.Drawing.Name)
	}

	return succeeded, failed
}

// Finalize builds the immutable result for a run over total items.
func (r *Reporter) Finalize(total int, cancelled bool) *Result {
	res := &Result{
		Succeeded: r.succeeded,
		Failed:    r.failed,
		Cancelled: cancelled,
		Attempted: len(r.succeeded) + len(r.failed),
		Total:     total,
		Elapsed:   time.Since(r.start),
	}

	var merr *multierror.Error

	for _, out := range r.failed {
		merr = multierror.Append(merr, fmt.Errorf("%s: %s", out.Drawing.Name, out.Detail))
	}

	res.Err = merr.ErrorOrNil()

	return res
}
