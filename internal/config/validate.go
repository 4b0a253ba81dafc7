package config

import (
	"errors"
	"fmt"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRun checks a run-mode configuration. All problems are
// reported at once via errors.Join.
func (c *Config) ValidateRun() error {
	var errs []error

	if len(c.Command) == 0 {
		errs = append(errs, &ValidationError{
			Field:   "command",
			Message: "no command given (use -- to separate flags from the command)",
		})
	}
	if c.WindowSeconds < 1 {
		errs = append(errs, &ValidationError{
			Field:   "window",
			Message: fmt.Sprintf("must be at least 1 second, got %d", c.WindowSeconds),
		})
	}
	if c.IntervalSeconds < 1 {
		errs = append(errs, &ValidationError{
			Field:   "interval",
			Message: fmt.Sprintf("must be at least 1 second, got %d", c.IntervalSeconds),
		})
	}
	if c.Grace <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "grace",
			Message: fmt.Sprintf("must be positive, got %s", c.Grace),
		})
	}
	if c.Overwrite && c.Append {
		errs = append(errs, &ValidationError{
			Field:   "overwrite",
			Message: "cannot combine -overwrite with -append",
		})
	}
	if (c.Overwrite || c.Append) && c.LogPath == "" {
		errs = append(errs, &ValidationError{
			Field:   "log",
			Message: "-overwrite and -append require an explicit -log path",
		})
	}
	if err := validateLogFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidatePulse checks a pulse-mode configuration.
func (c *Config) ValidatePulse() error {
	var errs []error

	if c.LogPath == "" {
		errs = append(errs, &ValidationError{
			Field:   "log",
			Message: "log file path is required",
		})
	}
	if c.WindowSeconds < 1 {
		errs = append(errs, &ValidationError{
			Field:   "window",
			Message: fmt.Sprintf("must be at least 1 second, got %d", c.WindowSeconds),
		})
	}
	if err := validateLogFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateExtract checks an extract-mode configuration.
func (c *Config) ValidateExtract() error {
	var errs []error

	if c.LogPath == "" {
		errs = append(errs, &ValidationError{
			Field:   "log",
			Message: "log file path is required",
		})
	}
	if c.TailLines < 0 {
		errs = append(errs, &ValidationError{
			Field:   "tail-lines",
			Message: fmt.Sprintf("cannot be negative, got %d", c.TailLines),
		})
	}
	if c.MaxMatches < 1 {
		errs = append(errs, &ValidationError{
			Field:   "max-matches",
			Message: fmt.Sprintf("must be at least 1, got %d", c.MaxMatches),
		})
	}
	if c.MaxLineLen < 1 {
		errs = append(errs, &ValidationError{
			Field:   "max-line-len",
			Message: fmt.Sprintf("must be at least 1, got %d", c.MaxLineLen),
		})
	}
	if err := validateLogFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateLogFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	default:
		return &ValidationError{
			Field:   "log-format",
			Message: fmt.Sprintf(`must be "json" or "text", got %q`, format),
		}
	}
}
