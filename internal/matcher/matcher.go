// Package matcher classifies output lines as errors or warnings using
// configurable regex pattern sets.
//
// Patterns come from the PULSE_ERROR_REGEX and PULSE_WARNING_REGEX
// environment variables, each a comma- or semicolon-separated list of
// regular expressions. Matching is unanchored, so plain substrings like
// "ERROR" work as patterns. When a variable is unset, empty, or contains
// a pattern that does not compile, the built-in defaults for that class
// are used instead.
package matcher

import (
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// Environment variables consumed by FromEnv.
const (
	ErrorPatternsEnv   = "PULSE_ERROR_REGEX"
	WarningPatternsEnv = "PULSE_WARNING_REGEX"
)

// Default pattern sets. Case-sensitive: "error:" in a compiler diagnostic
// is deliberately not the same signal as "ERROR" in a log line.
var (
	DefaultErrorPatterns   = []string{"ERROR", "FAILED", "Traceback", "panic"}
	DefaultWarningPatterns = []string{"WARNING", "DeprecationWarning"}
)

// Result reports which classes a line belongs to. A line may match both;
// both counters increment independently, error wins for display purposes.
type Result struct {
	Error   bool
	Warning bool
}

// Rules is an immutable compiled pattern set. Compile once at process
// start, never per line. Safe for concurrent use.
type Rules struct {
	errors   []*regexp.Regexp
	warnings []*regexp.Regexp
}

// Default returns rules compiled from the built-in pattern lists.
func Default() *Rules {
	r, _ := compileAll(DefaultErrorPatterns)
	w, _ := compileAll(DefaultWarningPatterns)
	return &Rules{errors: r, warnings: w}
}

// FromEnv builds rules from the environment, falling back per class to the
// defaults when a variable is absent, empty, or fails to compile. A compile
// failure is logged and degrades to defaults rather than aborting: a broken
// pattern should never block a long-running command.
func FromEnv(logger *slog.Logger) *Rules {
	return Parse(os.Getenv(ErrorPatternsEnv), os.Getenv(WarningPatternsEnv), logger)
}

// Parse builds rules from raw pattern list strings. Empty specs use the
// defaults for that class.
func Parse(errorSpec, warningSpec string, logger *slog.Logger) *Rules {
	rules := &Rules{}
	rules.errors = compileClass(errorSpec, DefaultErrorPatterns, ErrorPatternsEnv, logger)
	rules.warnings = compileClass(warningSpec, DefaultWarningPatterns, WarningPatternsEnv, logger)
	return rules
}

// Classify reports whether the line matches the error and/or warning sets.
// The caller is expected to have stripped the trailing line terminator.
func (r *Rules) Classify(line string) Result {
	return Result{
		Error:   matchAny(r.errors, line),
		Warning: matchAny(r.warnings, line),
	}
}

// ErrorPatternCount returns the number of compiled error patterns.
func (r *Rules) ErrorPatternCount() int { return len(r.errors) }

// WarningPatternCount returns the number of compiled warning patterns.
func (r *Rules) WarningPatternCount() int { return len(r.warnings) }

func matchAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// compileClass compiles one class's spec, degrading to the default list on
// any failure so the resulting set is never empty.
func compileClass(spec string, defaults []string, name string, logger *slog.Logger) []*regexp.Regexp {
	parts := SplitPatternList(spec)
	if len(parts) == 0 {
		compiled, _ := compileAll(defaults)
		return compiled
	}

	compiled, err := compileAll(parts)
	if err != nil {
		if logger != nil {
			logger.Warn("pattern_compile_failed",
				"var", name,
				"error", err,
				"fallback", strings.Join(defaults, ","),
			)
		}
		compiled, _ = compileAll(defaults)
	}
	return compiled
}

// SplitPatternList splits a comma- or semicolon-separated pattern list,
// trimming whitespace and dropping empty entries.
func SplitPatternList(spec string) []string {
	if spec == "" {
		return nil
	}
	raw := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ';'
	})
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
