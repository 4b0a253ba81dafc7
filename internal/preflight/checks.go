// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/logpulse/logpulse/internal/config"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks for a run configuration.
func RunAll(cfg *config.Config) *Result {
	result := &Result{
		Checks: make([]Check, 0, 3),
		Passed: true,
	}

	for _, check := range []Check{
		checkCommand(cfg.Command),
		checkWorkingDir(cfg.Dir),
		checkLogPath(cfg),
	} {
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.Passed = false
		}
	}

	return result
}

// checkCommand verifies the command executable can be resolved.
func checkCommand(command []string) Check {
	if len(command) == 0 {
		return Check{
			Name:    "command",
			Passed:  false,
			Message: "no command given",
		}
	}

	path, err := exec.LookPath(command[0])
	if err != nil {
		return Check{
			Name:    "command",
			Passed:  false,
			Message: fmt.Sprintf("%s not found in PATH: %v", command[0], err),
		}
	}

	return Check{
		Name:    "command",
		Passed:  true,
		Message: fmt.Sprintf("%s (%s)", command[0], path),
	}
}

// checkWorkingDir verifies the requested working directory exists.
func checkWorkingDir(dir string) Check {
	if dir == "" {
		return Check{
			Name:    "working_dir",
			Passed:  true,
			Message: "inherited from parent",
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return Check{
			Name:    "working_dir",
			Passed:  false,
			Message: fmt.Sprintf("%s: %v", dir, err),
		}
	}
	if !info.IsDir() {
		return Check{
			Name:    "working_dir",
			Passed:  false,
			Message: fmt.Sprintf("%s is not a directory", dir),
		}
	}

	return Check{
		Name:    "working_dir",
		Passed:  true,
		Message: dir,
	}
}

// checkLogPath verifies the log file can be created under the requested
// mode: a fresh path must not collide with an existing file unless
// -overwrite or -append was given, and the parent directory must exist.
func checkLogPath(cfg *config.Config) Check {
	if cfg.LogPath == "" {
		return Check{
			Name:    "log_path",
			Passed:  true,
			Message: "fresh temp file",
		}
	}

	parent := filepath.Dir(cfg.LogPath)
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return Check{
			Name:    "log_path",
			Passed:  false,
			Message: fmt.Sprintf("parent directory %s does not exist", parent),
		}
	}

	info, err := os.Stat(cfg.LogPath)
	switch {
	case err == nil && info.IsDir():
		return Check{
			Name:    "log_path",
			Passed:  false,
			Message: fmt.Sprintf("%s is a directory", cfg.LogPath),
		}
	case err == nil && !cfg.Overwrite && !cfg.Append:
		return Check{
			Name:    "log_path",
			Passed:  false,
			Message: fmt.Sprintf("%s exists (use -overwrite or -append)", cfg.LogPath),
		}
	case err == nil && cfg.Append:
		return Check{
			Name:    "log_path",
			Passed:  true,
			Message: fmt.Sprintf("appending to %s (%d bytes)", cfg.LogPath, info.Size()),
		}
	case err == nil:
		return Check{
			Name:    "log_path",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("overwriting %s (%d bytes)", cfg.LogPath, info.Size()),
		}
	default:
		return Check{
			Name:    "log_path",
			Passed:  true,
			Message: cfg.LogPath,
		}
	}
}

// PrintResults prints the preflight check results to stderr.
func PrintResults(w *os.File, result *Result) {
	fmt.Fprintln(w, "Preflight checks:")
	for _, check := range result.Checks {
		fmt.Fprintln(w, check.String())
	}
	fmt.Fprintln(w)
}
