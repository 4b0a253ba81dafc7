package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// envList is a custom flag type for repeatable -env flags.
type envList []string

func (e *envList) String() string {
	return strings.Join(*e, ", ")
}

func (e *envList) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected KEY=VALUE, got %q", value)
	}
	*e = append(*e, value)
	return nil
}

// ParseRunFlags parses the run subcommand's flags. Everything after the
// first non-flag argument (conventionally separated with --) is the
// supervised command.
func ParseRunFlags(args []string, errOut io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	var env envList

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, `Usage:
  logpulse run [flags] -- COMMAND [ARGS...]

Runs COMMAND, captures its combined output to a log file, and prints a
periodic one-line pulse instead of the full output. Exit code equals the
command's exit code (130 on interruption, 1 on setup failure).

Flags:
`)
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Log file path (default: fresh temp file)")
	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Allow overwriting an existing log file")
	fs.BoolVar(&cfg.Append, "append", cfg.Append, "Append to an existing log file")
	fs.IntVar(&cfg.WindowSeconds, "window", cfg.WindowSeconds, "Pulse window in seconds")
	fs.IntVar(&cfg.IntervalSeconds, "interval", cfg.IntervalSeconds, "Seconds between pulses")
	fs.DurationVar(&cfg.Grace, "grace", cfg.Grace, "Grace period before SIGKILL on interruption")
	fs.StringVar(&cfg.Dir, "cwd", cfg.Dir, "Working directory for the command")
	fs.Var(&env, "env", "Extra KEY=VALUE for the command (can repeat)")
	fs.BoolVar(&cfg.NoLastLine, "no-last-line", cfg.NoLastLine, "Omit the last-line excerpt from pulses")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	fs.StringVar(&cfg.MetricsSnapshotPath, "metrics-snapshot", cfg.MetricsSnapshotPath, "Write final metrics to this file at exit")
	fs.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Live terminal dashboard instead of pulse lines")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Env = env
	cfg.Command = fs.Args()
	return cfg, nil
}

// ParsePulseFlags parses the pulse subcommand's flags.
func ParsePulseFlags(args []string, errOut io.Writer) (*Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("pulse", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, `Usage:
  logpulse pulse -log PATH [flags]

Prints one pulse line summarizing the current state of the given log file.

Flags:
`)
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Log file path (required)")
	fs.IntVar(&cfg.WindowSeconds, "window", cfg.WindowSeconds, "Window label in seconds")
	fs.BoolVar(&cfg.NoLastLine, "no-last-line", cfg.NoLastLine, "Omit the last-line excerpt")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseExtractFlags parses the extract subcommand's flags.
func ParseExtractFlags(args []string, errOut io.Writer) (*Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, `Usage:
  logpulse extract -log PATH [flags]

Prints a compact error/warning report for the given log file.

Flags:
`)
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Log file path (required)")
	fs.BoolVar(&cfg.ShowTail, "show-tail", cfg.ShowTail, "Include the final lines of the log")
	fs.IntVar(&cfg.TailLines, "tail-lines", cfg.TailLines, "Number of tail lines")
	fs.IntVar(&cfg.MaxMatches, "max-matches", cfg.MaxMatches, "Displayed matches per class")
	fs.IntVar(&cfg.MaxLineLen, "max-line-len", cfg.MaxLineLen, "Truncate displayed match lines to this length")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
