// Package config provides configuration for the logpulse subcommands.
package config

import "time"

// Config holds all options across the run, pulse, and extract subcommands.
// Each subcommand parses only the fields it uses.
type Config struct {
	// Run
	Command         []string      // argv of the supervised command
	LogPath         string        // "" = fresh temp file
	Overwrite       bool          // truncate an existing log path
	Append          bool          // append to an existing log path
	WindowSeconds   int           // pulse window label
	IntervalSeconds int           // seconds between pulses
	Grace           time.Duration // SIGTERM to SIGKILL escalation
	Dir             string        // child working directory
	Env             []string      // extra KEY=VALUE for the child
	NoLastLine      bool          // omit the excerpt field from pulses

	// Observability
	MetricsAddr         string // "" = metrics server disabled
	MetricsSnapshotPath string // "" = no snapshot file at exit
	TUIEnabled          bool

	// Extract / one-shot pulse
	ShowTail   bool
	TailLines  int
	MaxMatches int
	MaxLineLen int

	// Logging
	Verbose   bool
	LogFormat string // "json" or "text"
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		WindowSeconds:   10,
		IntervalSeconds: 5,
		Grace:           5 * time.Second,

		TailLines:  80,
		MaxMatches: 20,
		MaxLineLen: 240,

		LogFormat: "text",
	}
}

// Interval returns the pulse interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
