// Package main provides the logpulse CLI entry point.
//
// logpulse runs a command, captures its merged stdout+stderr to an
// append-only log file, and prints a compact periodic pulse instead of
// the full output. Finished (or still-running) logs can be summarized
// with the pulse and extract subcommands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/logpulse/logpulse/internal/config"
	"github.com/logpulse/logpulse/internal/extract"
	"github.com/logpulse/logpulse/internal/logging"
	"github.com/logpulse/logpulse/internal/matcher"
	"github.com/logpulse/logpulse/internal/orchestrator"
	"github.com/logpulse/logpulse/internal/pulse"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/logpulse
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		return 1
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "version", "-version", "--version":
		fmt.Printf("logpulse %s\n", version)
		return 0
	case "run":
		return runCommand(args)
	case "pulse":
		return pulseCommand(args)
	case "extract":
		return extractCommand(args)
	case "help", "-h", "-help", "--help":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printUsage(os.Stderr)
		return 1
	}
}

// runCommand supervises a child command and emits periodic pulses.
func runCommand(args []string) int {
	cfg, err := config.ParseRunFlags(args, os.Stderr)
	if err != nil {
		return 1
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	if err := cfg.ValidateRun(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	return orchestrator.New(cfg, logger).Run(context.Background())
}

// pulseCommand prints one pulse line covering an entire log file.
func pulseCommand(args []string) int {
	cfg, err := config.ParsePulseFlags(args, os.Stderr)
	if err != nil {
		return 1
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	if err := cfg.ValidatePulse(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	rules := matcher.FromEnv(logger)
	report, err := extract.Scan(cfg.LogPath, rules, extract.Options{})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "pulse: log not found: %s\n", cfg.LogPath)
		} else {
			fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		}
		return 1
	}

	fmt.Println(pulse.FormatPulse(cfg.WindowSeconds, report.PulseSnapshot(), !cfg.NoLastLine))
	return 0
}

// extractCommand prints a compact error/warning report for a log file.
func extractCommand(args []string) int {
	cfg, err := config.ParseExtractFlags(args, os.Stderr)
	if err != nil {
		return 1
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	if err := cfg.ValidateExtract(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	opts := extract.Options{
		MaxMatches: cfg.MaxMatches,
		MaxLineLen: cfg.MaxLineLen,
		TailLines:  cfg.TailLines,
		ShowTail:   cfg.ShowTail,
	}

	rules := matcher.FromEnv(logger)
	report, err := extract.Scan(cfg.LogPath, rules, opts)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "pulse: log not found: %s\n", cfg.LogPath)
		} else {
			fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		}
		return 1
	}

	report.Render(os.Stdout, opts)
	return 0
}

// newLogger builds the slog logger for a subcommand. When the TUI owns
// the terminal all log output is discarded.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.TUIEnabled {
		return logging.NewWithWriter(io.Discard, "json", false)
	}
	return logging.New(cfg.LogFormat, cfg.Verbose)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `logpulse %s — pulse-monitored command execution

Usage:
  logpulse run [flags] -- COMMAND [ARGS...]   run a command under pulse monitoring
  logpulse pulse -log PATH [flags]            one-shot pulse for an existing log
  logpulse extract -log PATH [flags]          error/warning report for a log
  logpulse version                            print the version

Error and warning patterns come from PULSE_ERROR_REGEX and
PULSE_WARNING_REGEX (comma or semicolon separated regular expressions);
built-in defaults are used when unset.

Run "logpulse <command> -h" for command flags.
`, version)
}
