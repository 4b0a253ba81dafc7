// Package runner spawns the supervised command and streams its merged
// stdout+stderr, line by line, into the capture pipeline.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// LineSink receives every captured output line. A non-nil error aborts the
// run: the child is killed rather than left running unmonitored.
type LineSink interface {
	Observe(line string) error
}

// SinkFunc adapts a function to the LineSink interface.
type SinkFunc func(line string) error

// Observe calls f(line).
func (f SinkFunc) Observe(line string) error { return f(line) }

// Config holds configuration for creating a Runner.
type Config struct {
	Command []string // argv, Command[0] is the executable
	Dir     string   // working directory ("" = inherit)
	Env     []string // extra KEY=VALUE entries appended to the environment
	Logger  *slog.Logger
}

// Result captures the outcome of one supervised execution.
type Result struct {
	ExitCode    int
	Interrupted bool
	Signal      string // signal name when Interrupted
	Uptime      time.Duration
}

// Runner runs a single command to completion, capturing its output.
type Runner struct {
	cfg    Config
	logger *slog.Logger

	cmdMu sync.Mutex
	cmd   *exec.Cmd

	// done closes when Wait has returned; Stop uses it to decide whether
	// the grace period expired.
	done chan struct{}

	interrupted bool
	signalName  string
}

// New creates a Runner. The command is validated at Run time.
func New(cfg Config) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: cfg.Logger,
		done:   make(chan struct{}),
	}
}

// Run spawns the command and blocks until it exits and all output has been
// delivered to the sink. Both stdout and stderr are merged into a single
// pipe, so relative ordering is whatever the OS delivers. A final partial
// line without a terminator is still delivered and counted.
//
// A sink error kills the child and is returned wrapped; the caller treats
// it as fatal. Child exit codes are not errors here: they are reported via
// Result so the caller can propagate them faithfully.
func (r *Runner) Run(ctx context.Context, sink LineSink) (Result, error) {
	if len(r.cfg.Command) == 0 {
		return Result{ExitCode: 1}, errors.New("no command given")
	}

	cmd := exec.CommandContext(ctx, r.cfg.Command[0], r.cfg.Command[1:]...)
	cmd.Dir = r.cfg.Dir
	if len(r.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), r.cfg.Env...)
	}

	// One pipe for both streams: the log is a single merged transcript.
	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	// Own process group so Stop can signal the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return Result{ExitCode: 1}, fmt.Errorf("start %s: %w", r.cfg.Command[0], err)
	}

	// The parent's write end must close after Start so the read side sees
	// EOF once the child (and any inheritors) are gone.
	pw.Close()

	r.cmdMu.Lock()
	r.cmd = cmd
	r.cmdMu.Unlock()

	r.logger.Info("child_started",
		"pid", cmd.Process.Pid,
		"command", r.cfg.Command[0],
	)

	scanErr := r.stream(pr, sink)
	pr.Close()

	if scanErr != nil {
		// Capture broke (sink or pipe failure): kill the child, it must
		// not keep running unmonitored.
		r.killGroup(cmd)
	}

	waitErr := cmd.Wait()
	close(r.done)
	uptime := time.Since(start)

	r.cmdMu.Lock()
	r.cmd = nil
	interrupted := r.interrupted
	signalName := r.signalName
	r.cmdMu.Unlock()

	exitCode := extractExitCode(waitErr)

	r.logger.Info("child_exited",
		"pid", cmd.Process.Pid,
		"exit_code", exitCode,
		"interrupted", interrupted,
		"uptime", uptime.String(),
	)

	result := Result{
		ExitCode:    exitCode,
		Interrupted: interrupted,
		Signal:      signalName,
		Uptime:      uptime,
	}
	if scanErr != nil {
		return result, scanErr
	}
	return result, nil
}

// stream reads the merged output line by line into the sink. Lines are
// terminated by "\n", "\r\n", or a bare "\r" (progress-bar rewrites count
// as separate lines), and there is no cap on line length: a child emitting
// one enormous line must not abort its own supervision.
func (r *Runner) stream(f *os.File, sink LineSink) error {
	buf := make([]byte, 64*1024)
	var pending []byte
	lastCR := false

	flush := func() error {
		line := string(pending)
		pending = pending[:0]
		if err := sink.Observe(line); err != nil {
			return fmt.Errorf("output capture: %w", err)
		}
		return nil
	}

	for {
		n, readErr := f.Read(buf)
		for _, b := range buf[:n] {
			switch b {
			case '\n':
				// The "\r\n" pair already flushed at the '\r'.
				if lastCR {
					lastCR = false
					continue
				}
				if err := flush(); err != nil {
					return err
				}
			case '\r':
				lastCR = true
				if err := flush(); err != nil {
					return err
				}
			default:
				lastCR = false
				pending = append(pending, b)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read child output: %w", readErr)
		}
	}

	if len(pending) > 0 {
		return flush()
	}
	return nil
}

// Stop requests termination: SIGTERM to the child's process group, then
// SIGKILL if it has not exited after the grace period. Marks the run as
// interrupted so the final report is distinguishable from a normal
// non-zero exit. Safe to call while Run is blocked.
func (r *Runner) Stop(sig os.Signal, grace time.Duration) {
	r.cmdMu.Lock()
	cmd := r.cmd
	r.interrupted = true
	if s, ok := sig.(syscall.Signal); ok {
		r.signalName = unixSignalName(s)
	}
	r.cmdMu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}

	r.logger.Info("stopping_child", "pid", cmd.Process.Pid, "grace", grace.String())
	signalGroup(cmd, syscall.SIGTERM)

	select {
	case <-r.done:
	case <-time.After(grace):
		r.logger.Warn("grace_expired_killing", "pid", cmd.Process.Pid)
		r.killGroup(cmd)
	}
}

// killGroup sends SIGKILL to the child's process group.
func (r *Runner) killGroup(cmd *exec.Cmd) {
	signalGroup(cmd, syscall.SIGKILL)
}

// signalGroup signals the whole process group, falling back to the single
// process when the group is gone.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		syscall.Kill(-pgid, sig)
	} else {
		cmd.Process.Signal(sig)
	}
}

// extractExitCode maps a Wait error to the child's exit code, using the
// 128+signal convention for signal deaths.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	return 1
}

// unixSignalName names the common interruption signals.
func unixSignalName(s syscall.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	case syscall.SIGHUP:
		return "SIGHUP"
	default:
		return fmt.Sprintf("SIG%d", int(s))
	}
}
