// Package orchestrator wires the run-mode components together: log
// capture, the pulse scheduler, metrics, and the optional dashboard.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/logpulse/logpulse/internal/config"
	"github.com/logpulse/logpulse/internal/logwriter"
	"github.com/logpulse/logpulse/internal/matcher"
	"github.com/logpulse/logpulse/internal/metrics"
	"github.com/logpulse/logpulse/internal/preflight"
	"github.com/logpulse/logpulse/internal/pulse"
	"github.com/logpulse/logpulse/internal/runner"
	"github.com/logpulse/logpulse/internal/stats"
	"github.com/logpulse/logpulse/internal/timeseries"
	"github.com/logpulse/logpulse/internal/tui"
)

// Orchestrator coordinates one supervised run.
type Orchestrator struct {
	cfg    *config.Config
	logger *slog.Logger

	sessionID string
	rules     *matcher.Rules
	collector *metrics.Collector
	tracker   *timeseries.LineRateTracker
	runStats  *stats.RunStats
}

// New creates an Orchestrator with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		logger:    logger,
		sessionID: uuid.NewString(),
		rules:     matcher.FromEnv(logger),
		collector: metrics.NewCollector(),
		tracker:   timeseries.NewLineRateTracker(),
		runStats:  stats.NewRunStats(),
	}
}

// Run executes the supervised command to completion and returns the
// process exit code for main: the child's own code, 130 on interruption,
// 1 on setup failure.
func (o *Orchestrator) Run(ctx context.Context) int {
	checks := preflight.RunAll(o.cfg)
	if !checks.Passed {
		preflight.PrintResults(os.Stderr, checks)
		return 1
	}

	writer, err := o.openLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pulse: cannot open log: %v\n", err)
		return 1
	}
	defer writer.Close()
	logPath := writer.Path()

	command := strings.Join(o.cfg.Command, " ")
	o.logger.Info("run_starting",
		"session_id", o.sessionID,
		"log", logPath,
		"command", command,
		"window_s", o.cfg.WindowSeconds,
		"interval_s", o.cfg.IntervalSeconds,
	)

	o.collector.SetRunInfo(o.sessionID, logPath, command)
	o.collector.SetChildRunning(true)

	var server *metrics.Server
	if o.cfg.MetricsAddr != "" {
		server = metrics.NewServer(o.cfg.MetricsAddr, o.collector.Registry(), o.logger)
		server.Start()
	}

	if !o.cfg.TUIEnabled {
		fmt.Printf("pulse: log=%s\n", logPath)
		fmt.Printf("pulse: cmd=%s\n", command)
	}

	window := pulse.NewWindow(o.rules)
	sink := runner.SinkFunc(func(line string) error {
		if err := writer.WriteLine(line); err != nil {
			return err
		}
		res := window.Add(line)
		o.collector.ObserveLine(res.Error, res.Warning)
		o.tracker.AddLines(1)
		return nil
	})

	run := runner.New(runner.Config{
		Command: o.cfg.Command,
		Dir:     o.cfg.Dir,
		Env:     o.cfg.Env,
		Logger:  o.logger,
	})

	// Closed only after Run has returned, so the scheduler's final drain
	// covers every captured line.
	exited := make(chan struct{})
	var result runner.Result
	var runErr error
	go func() {
		defer close(exited)
		result, runErr = run.Run(ctx, sink)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for sig := range sigCh {
			o.logger.Info("signal_received", "signal", sig.String())
			run.Stop(sig, o.cfg.Grace)
		}
	}()

	var program *tea.Program
	pulseOut := io.Writer(os.Stdout)
	if o.cfg.TUIEnabled {
		program = tea.NewProgram(tui.New(tui.Config{
			Command:    command,
			LogPath:    logPath,
			SessionID:  o.sessionID,
			RateSource: o.tracker,
			Interrupt: func() {
				run.Stop(syscall.SIGTERM, o.cfg.Grace)
			},
		}), tea.WithAltScreen())
		pulseOut = io.Discard
	}

	scheduler := pulse.NewScheduler(pulse.SchedulerConfig{
		Window:        window,
		Interval:      o.cfg.Interval(),
		WindowSeconds: o.cfg.WindowSeconds,
		IncludeLast:   !o.cfg.NoLastLine,
		Out:           pulseOut,
		Logger:        o.logger,
		Observer: func(snap pulse.Snapshot, line string) {
			o.collector.ObservePulse(snap.Lines)
			o.runStats.RecordPulse(snap.Lines, snap.Errors, snap.Warnings)
			o.tracker.RecordSample()
			tui.SendPulse(program, snap, line)
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx, exited)
	}()

	if program != nil {
		go func() {
			<-exited
			wg.Wait()
			tui.SendExit(program, exitCode(result, runErr), result.Interrupted)
		}()
		if _, err := program.Run(); err != nil {
			o.logger.Error("tui_failed", "error", err)
		}
	}

	<-exited
	wg.Wait()

	o.collector.SetChildRunning(false)
	o.collector.RecordExit(exitCode(result, runErr))

	o.shutdownMetrics(server)
	if err := writer.Close(); err != nil {
		o.logger.Warn("log_close_failed", "error", err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "pulse: FAILED exit=1 log=%s\n", logPath)
		fmt.Fprintf(os.Stderr, "pulse: %v\n", runErr)
		return 1
	}

	code := o.printStatus(logPath, result)
	o.printExitSummary(logPath, scheduler.Pulses())

	o.logger.Info("run_finished",
		"session_id", o.sessionID,
		"exit_code", code,
		"interrupted", result.Interrupted,
		"uptime", result.Uptime.String(),
		"lines", writer.Lines(),
		"bytes", writer.Bytes(),
	)
	return code
}

// openLog opens the capture log in the mode the flags selected. An empty
// path means a fresh temp file, kept after exit so it can be extracted.
func (o *Orchestrator) openLog() (*logwriter.Writer, error) {
	if o.cfg.LogPath == "" {
		f, err := os.CreateTemp("", "logpulse-*.log")
		if err != nil {
			return nil, fmt.Errorf("temp log: %w", err)
		}
		path := f.Name()
		f.Close()
		return logwriter.Open(path, logwriter.ModeTruncate)
	}

	mode := logwriter.ModeCreate
	switch {
	case o.cfg.Append:
		mode = logwriter.ModeAppend
	case o.cfg.Overwrite:
		mode = logwriter.ModeTruncate
	}
	return logwriter.Open(o.cfg.LogPath, mode)
}

func (o *Orchestrator) shutdownMetrics(server *metrics.Server) {
	if o.cfg.MetricsSnapshotPath != "" {
		if err := o.collector.WriteSnapshotFile(o.cfg.MetricsSnapshotPath); err != nil {
			o.logger.Warn("metrics_snapshot_failed", "error", err)
		}
	}
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			o.logger.Warn("metrics_server_shutdown_error", "error", err)
		}
	}
}

// printStatus writes the final status line and returns the exit code.
func (o *Orchestrator) printStatus(logPath string, result runner.Result) int {
	switch {
	case result.Interrupted:
		fmt.Printf("pulse: INTERRUPTED signal=%s exit=130 log=%s\n", result.Signal, logPath)
		return 130
	case result.ExitCode == 0:
		fmt.Printf("pulse: ok exit=0 log=%s\n", logPath)
		return 0
	default:
		fmt.Printf("pulse: FAILED exit=%d log=%s\n", result.ExitCode, logPath)
		fmt.Printf("pulse: inspect with: logpulse extract -log %s\n", logPath)
		return result.ExitCode
	}
}

// printExitSummary prints a summary block for the run.
func (o *Orchestrator) printExitSummary(logPath string, pulses int64) {
	summary := o.runStats.Summary()

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════════")
	fmt.Println("                        logpulse Exit Summary")
	fmt.Println("═══════════════════════════════════════════════════════════════════")
	fmt.Printf("Run Duration:           %s\n", formatDuration(summary.Duration))
	fmt.Printf("Pulses Emitted:         %d\n", pulses)
	fmt.Println()
	fmt.Println("Lines:")
	fmt.Printf("  Total:                %d\n", summary.TotalLines)
	fmt.Printf("  Errors:               %d\n", summary.TotalErrors)
	fmt.Printf("  Warnings:             %d\n", summary.TotalWarnings)
	fmt.Println()

	if summary.Pulses > 0 {
		fmt.Println("Lines per Window:")
		fmt.Printf("  P50 (median):         %.0f\n", summary.WindowLinesP50)
		fmt.Printf("  P95:                  %.0f\n", summary.WindowLinesP95)
		fmt.Printf("  Max:                  %d\n", summary.MaxWindowLines)
		fmt.Println()
	}

	fmt.Printf("Log file:               %s\n", logPath)
	if o.cfg.MetricsAddr != "" {
		fmt.Printf("Metrics endpoint was:   http://%s/metrics\n", o.cfg.MetricsAddr)
	}
	fmt.Println("═══════════════════════════════════════════════════════════════════")
}

// exitCode collapses a runner result and error into the process exit code.
func exitCode(result runner.Result, runErr error) int {
	if runErr != nil {
		return 1
	}
	if result.Interrupted {
		return 130
	}
	return result.ExitCode
}

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
