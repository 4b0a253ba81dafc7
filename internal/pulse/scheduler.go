package pulse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Observer is notified of every emitted pulse. Used to fan snapshots out
// to metrics, run statistics, and the TUI without coupling the scheduler
// to any of them.
type Observer func(snap Snapshot, line string)

// SchedulerConfig holds configuration for creating a Scheduler.
type SchedulerConfig struct {
	Window        *Window
	Interval      time.Duration
	WindowSeconds int
	IncludeLast   bool // include the last:"..." excerpt field
	Out           io.Writer
	Logger        *slog.Logger
	Observer      Observer // optional
}

// Scheduler drains the shared window on a fixed interval and writes one
// pulse line per drain. When the child exits it performs one final
// unconditional drain so no captured output goes unreported.
type Scheduler struct {
	window        *Window
	interval      time.Duration
	windowSeconds int
	includeLast   bool
	out           io.Writer
	logger        *slog.Logger
	observer      Observer

	stateMu sync.RWMutex
	state   State

	pulses int64
}

// NewScheduler creates a Scheduler in the Idle state.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		window:        cfg.Window,
		interval:      cfg.Interval,
		windowSeconds: cfg.WindowSeconds,
		includeLast:   cfg.IncludeLast,
		out:           cfg.Out,
		logger:        cfg.Logger,
		observer:      cfg.Observer,
		state:         StateIdle,
	}
}

// Run drives the pulse loop. It blocks until the exited channel closes
// (child gone, stream drained) or the context is cancelled, emits the
// final drain pulse, and stops. The final pulse is emitted exactly once.
func (s *Scheduler) Run(ctx context.Context, exited <-chan struct{}) {
	s.setState(StateRunning)
	s.logger.Debug("scheduler_started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.emit()
		case <-exited:
			// The runner closes this only after the last line has been
			// captured, so the drain below covers everything.
			s.finish("child_exited")
			return
		case <-ctx.Done():
			s.finish("context_cancelled")
			return
		}
	}
}

// finish performs the Draining transition and the final unconditional drain.
func (s *Scheduler) finish(reason string) {
	s.stateMu.Lock()
	if s.state == StateStopped {
		s.stateMu.Unlock()
		return
	}
	s.state = StateDraining
	s.stateMu.Unlock()

	s.emit()
	s.setState(StateStopped)
	s.logger.Debug("scheduler_stopped", "reason", reason, "pulses", s.pulses)
}

// emit drains the window and writes one pulse line.
func (s *Scheduler) emit() {
	snap := s.window.DrainAndReset()
	line := FormatPulse(s.windowSeconds, snap, s.includeLast)

	fmt.Fprintln(s.out, line)
	s.pulses++

	if s.observer != nil {
		s.observer(snap, line)
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Pulses returns the number of pulses emitted so far, the final drain
// included. Only meaningful after Run has returned.
func (s *Scheduler) Pulses() int64 { return s.pulses }

func (s *Scheduler) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// FormatPulse renders a snapshot as a single pulse line:
//
//	last 10s: +243 lines | errors:0 | warnings:1 | total:12034 | last:"..."
//
// The excerpt field is omitted when disabled or when no non-empty line has
// been observed yet.
func FormatPulse(windowSeconds int, snap Snapshot, includeLast bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "last %ds: +%d lines | errors:%d | warnings:%d | total:%d",
		windowSeconds, snap.Lines, snap.Errors, snap.Warnings, snap.Total)
	if includeLast && snap.LastLine != "" {
		fmt.Fprintf(&b, " | last:%q", snap.LastLine)
	}
	return b.String()
}
