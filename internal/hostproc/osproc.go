// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package hostproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/matt-FFFFFF/cadbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/cadbatch/internal/signalbroker"
)

const (
	maxBufferSize  = 8 * 1024 * 1024  // 8MB
	tickerInterval = 10 * time.Second // Interval for the process watchdog heartbeat
)

var _ Process = (*OSProcess)(nil)

var (
	// ErrBufferOverflow is returned when the output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToReadBuffer is returned when the buffer from the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrAborted is returned when the process is killed because the context was done.
	ErrAborted = errors.New("context done, process terminated")
	// ErrDuplicateSignalReceived is returned when a duplicate signal is received, forcing process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
	// ErrNotStarted is returned when AwaitExit is called before Start.
	ErrNotStarted = errors.New("process not started")
)

// OSProcess supervises one real host process.
type OSProcess struct {
	spec      Spec
	ps        *os.Process
	rOut      *os.File
	wOut      *os.File
	rErr      *os.File
	wErr      *os.File
	sigCh     chan os.Signal
	startTime time.Time
	killOnce  sync.Once
}

// NewOSProcess creates a supervisor for a single invocation of spec.
func NewOSProcess(spec Spec) *OSProcess {
	return &OSProcess{spec: spec}
}

// Start implements the Process interface.
func (p *OSProcess) Start(ctx context.Context) error {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "OSProcess").
		With("label", p.spec.Label)

	logger.Debug("host info", "path", p.spec.Path, "cwd", p.spec.Cwd, "args", p.spec.Args)

	if p.sigCh == nil {
		p.sigCh = signalbroker.New(ctx)
	}

	env := os.Environ()

	for k, v := range p.spec.Env {
		logger.Debug("adding environment variable", "key", k)
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	var err error

	p.rOut, p.wOut, err = os.Pipe()
	if err != nil {
		return errors.Join(ErrCouldNotStartProcess, err)
	}

	p.rErr, p.wErr, err = os.Pipe()
	if err != nil {
		return errors.Join(ErrCouldNotStartProcess, err)
	}

	execName := filepath.Base(p.spec.Path)
	args := slices.Concat([]string{execName}, p.spec.Args)

	logger.Debug("starting host process")

	ps, err := os.StartProcess(p.spec.Path, args, &os.ProcAttr{
		Dir:   p.spec.Cwd,
		Env:   env,
		Files: []*os.File{os.Stdin, p.wOut, p.wErr},
	})
	if err != nil {
		return errors.Join(ErrCouldNotStartProcess, err)
	}

	p.ps = ps
	p.startTime = time.Now()

	logger.Debug("host process started", "pid", ps.Pid)

	return nil
}

// AwaitExit implements the Process interface.
func (p *OSProcess) AwaitExit(ctx context.Context) ExitState {
	if p.ps == nil {
		return ExitState{Code: -1, Err: ErrNotStarted}
	}

	logger := ctxlog.Logger(ctx).
		With("runnableType", "OSProcess").
		With("label", p.spec.Label)

	// The watchdog kills the process when the context is done and passes on
	// any signals received by the supervisor.
	done := make(chan struct{})
	wasKilled := make(chan error)

	go func() {
		signalCount := make(map[os.Signal]struct{})

		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logger.Debug("host still running", "elapsed", time.Since(p.startTime).Round(time.Second).String())

			case s := <-p.sigCh:
				if _, ok := signalCount[s]; ok {
					logger.Info("received duplicate signal, killing host", "signal", s.String())
					p.ForceTerminate()

					select {
					case wasKilled <- ErrDuplicateSignalReceived:
					case <-done:
					}

					return
				}

				signalCount[s] = struct{}{}

				logger.Info("received signal, forwarding to host", "signal", s.String())

				if err := p.ps.Signal(s); err != nil {
					logger.Info("failed to send signal", "signal", s.String(), "error", err)
				}

			case <-ctx.Done():
				logger.Info("context done, killing host")
				p.ForceTerminate()

				select {
				case wasKilled <- ErrAborted:
				case <-done:
				}

				return

			case <-done:
				return
			}
		}
	}()

	logger.Debug("waiting for host to exit")

	state, psErr := p.ps.Wait()
	elapsed := time.Since(p.startTime)

	_ = p.wOut.Close()
	_ = p.wErr.Close()

	res := ExitState{
		Code:    state.ExitCode(),
		Err:     psErr,
		Elapsed: elapsed,
	}

	logger.Debug("host exited", "exitCode", res.Code, "elapsed", elapsed.String())

	select {
	case e := <-wasKilled:
		res.Err = errors.Join(res.Err, e)
		res.Code = -1
		res.Killed = true
	default:
		// No error from watchdog, process completed normally
	}

	close(done)

	stdout, err := readAllUpToMax(ctx, p.rOut, maxBufferSize)

	res.Stdout = stdout
	if err != nil {
		res.Err = errors.Join(res.Err, err)
	}

	stderr, err := readAllUpToMax(ctx, p.rErr, maxBufferSize)

	res.Stderr = stderr
	if err != nil {
		res.Err = errors.Join(res.Err, err)
	}

	return res
}

// ForceTerminate implements the Process interface.
func (p *OSProcess) ForceTerminate() {
	if p.ps == nil {
		return
	}

	p.killOnce.Do(func() {
		if err := p.ps.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			ctxlog.Error(context.Background(), "host kill error", "pid", p.ps.Pid, "error", err)
		}
	})
}

func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && err != io.EOF {
		return nil, errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		ctxlog.Debug(ctx, "buffer overflow in readAllUpToMax", "bytesRead", n, "maxBytes", maxBufferSize)

		return buf.Bytes()[:maxBufferSize], ErrBufferOverflow
	}

	return buf.Bytes(), nil
}
