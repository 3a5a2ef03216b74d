// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/cadbatch/internal/batch"
	"github.com/matt-FFFFFF/cadbatch/internal/progress"
)

// Reporter implements progress.Reporter and forwards events to the TUI.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewReporter creates a new TUI progress reporter.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{
		program: program,
	}
}

// Report implements progress.Reporter.Report.
func (tr *Reporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.Close.
func (tr *Reporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()
	tr.closed = true
}

// ExecFunc runs the batch and returns its result. The provided reporter
// feeds the TUI for the duration of the run.
type ExecFunc func(ctx context.Context, reporter progress.Reporter) (*batch.Result, error)

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
	mutex    sync.Mutex
}

// NewRunner creates a new TUI runner.
func NewRunner() *Runner {
	model := NewModel()
	program := tea.NewProgram(model, tea.WithAltScreen())
	reporter := NewReporter(program)

	return &Runner{
		model:    model,
		program:  program,
		reporter: reporter,
	}
}

// Reporter returns the progress reporter for this TUI runner.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

type runOutcome struct {
	result *batch.Result
	err    error
}

// Run starts the TUI and executes the batch with progress reporting. It
// returns once both the batch and the TUI have finished: after the run
// completes the TUI stays up for inspection until the user quits.
func (r *Runner) Run(ctx context.Context, exec ExecFunc) (*batch.Result, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	resultChan := make(chan runOutcome, 1)

	go func() {
		defer close(resultChan)

		res, err := exec(ctx, r.reporter)
		resultChan <- runOutcome{result: res, err: err}
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var outcome runOutcome

	select {
	case outcome = <-resultChan:
		// Batch completed; show the final state until the user exits.
		r.program.Send(RunCompletedMsg{Result: outcome.result})

		if err := <-tuiDone; err != nil && outcome.err == nil {
			outcome.err = err
		}

		r.reporter.Close()

	case err := <-tuiDone:
		// The user quit the TUI while the batch was still running. The
		// batch context is managed by the caller; wait for it to wind down.
		r.reporter.Close()

		select {
		case outcome = <-resultChan:
		case <-ctx.Done():
			outcome = runOutcome{err: ctx.Err()}
		}

		if err != nil && outcome.err == nil {
			outcome.err = err
		}

	case <-ctx.Done():
		r.reporter.Close()
		r.program.Quit()

		select {
		case outcome = <-resultChan:
		default:
			outcome = runOutcome{err: ctx.Err()}
		}

		<-tuiDone
	}

	return outcome.result, outcome.err
}
