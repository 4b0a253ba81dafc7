// Package stats aggregates per-pulse observations into an end-of-run
// summary, using a t-digest for lines-per-window percentiles.
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"
)

// RunStats accumulates pulse observations over one run session.
//
// Thread-safe: RecordPulse is called from the scheduler goroutine while
// Summary may be read from the TUI.
type RunStats struct {
	mu sync.Mutex

	digest *tdigest.TDigest

	pulses         int64
	totalLines     int64
	totalErrors    int64
	totalWarnings  int64
	maxWindowLines int64

	start time.Time
}

// Summary is a point-in-time aggregation of a run.
type Summary struct {
	Pulses         int64
	TotalLines     int64
	TotalErrors    int64
	TotalWarnings  int64
	MaxWindowLines int64

	// Lines-per-window percentiles across all emitted pulses.
	WindowLinesP50 float64
	WindowLinesP95 float64

	Duration time.Duration
}

// NewRunStats creates stats anchored at the current time.
func NewRunStats() *RunStats {
	return &RunStats{
		// 100 centroids is plenty for the handful of pulses a run emits.
		digest: tdigest.NewWithCompression(100),
		start:  time.Now(),
	}
}

// RecordPulse folds one drained window into the aggregates.
func (s *RunStats) RecordPulse(lines, errors, warnings int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pulses++
	s.totalLines += lines
	s.totalErrors += errors
	s.totalWarnings += warnings
	if lines > s.maxWindowLines {
		s.maxWindowLines = lines
	}
	s.digest.Add(float64(lines), 1)
}

// Summary returns the current aggregation.
func (s *RunStats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Pulses:         s.pulses,
		TotalLines:     s.totalLines,
		TotalErrors:    s.totalErrors,
		TotalWarnings:  s.totalWarnings,
		MaxWindowLines: s.maxWindowLines,
		Duration:       time.Since(s.start),
	}
	if s.pulses > 0 {
		sum.WindowLinesP50 = s.digest.Quantile(0.50)
		sum.WindowLinesP95 = s.digest.Quantile(0.95)
	}
	return sum
}
