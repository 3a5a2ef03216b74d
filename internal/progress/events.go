// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress defines the real-time event stream emitted by a batch run.
// Events feed the TUI and any other monitoring surface without blocking the
// orchestration loop.
package progress

import (
	"time"
)

// EventType represents the type of progress event.
type EventType int

const (
	// EventBatchStarted indicates a batch run has begun.
	EventBatchStarted EventType = iota
	// EventItemStarted indicates an item's invocation is about to start.
	EventItemStarted
	// EventItemFinished indicates an item's outcome has been recorded.
	EventItemFinished
	// EventLog carries a log line from the run.
	EventLog
	// EventBatchFinished indicates the run is complete or cancelled.
	EventBatchFinished
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventBatchStarted:
		return "batch started"
	case EventItemStarted:
		return "item started"
	case EventItemFinished:
		return "item finished"
	case EventLog:
		return "log"
	case EventBatchFinished:
		return "batch finished"
	default:
		return "unknown"
	}
}

// Event is a single update from a batch run.
type Event struct {
	// Type indicates what happened.
	Type EventType
	// Drawing is the display name of the item the event concerns, if any.
	Drawing string
	// Current is the progress numerator. For EventItemStarted it is the
	// 1-based position of the item; for EventItemFinished it is the number
	// of completed items. It is monotonically non-decreasing across a run.
	Current int
	// Total is the progress denominator.
	Total int
	// Message is a human-readable status or log line.
	Message string
	// Failed is set on EventItemFinished when the outcome was a failure.
	Failed bool
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Reporter is the interface for sending progress events. Implementations
// must be non-blocking; the orchestration loop never waits on a listener.
type Reporter interface {
	// Report sends a progress event.
	Report(event Event)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// Listener receives progress events from a batch run.
type Listener interface {
	// OnEvent is called when a progress event is received. Implementations
	// should handle events quickly to avoid losing later ones.
	OnEvent(event Event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report implements Reporter.Report by doing nothing.
func (nr *NullReporter) Report(event Event) {}

// Close implements Reporter.Close by doing nothing.
func (nr *NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}
