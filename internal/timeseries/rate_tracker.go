// Package timeseries tracks line throughput over rolling windows for the
// live dashboard.
package timeseries

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// ringSize is the number of retained samples (2 minutes at 1/sec).
	ringSize = 120

	window10s = 10 * time.Second
	window60s = 60 * time.Second
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// sample is a point-in-time snapshot of the cumulative line count.
type sample struct {
	timestamp time.Time
	lines     int64
}

// LineRateTracker tracks the cumulative line count and computes rolling
// lines-per-second rates. AddLines is lock-free; RecordSample and
// RateStats take the ring lock.
type LineRateTracker struct {
	totalLines atomic.Int64

	mu       sync.RWMutex
	samples  []sample
	writeIdx int

	startTime time.Time
	clock     Clock
}

// RateStats contains computed rates at a point in time.
type RateStats struct {
	TotalLines int64
	Rate10s    float64 // lines/sec over the last 10 seconds
	Rate60s    float64 // lines/sec over the last 60 seconds
	RateTotal  float64 // lines/sec since tracking started
}

// NewLineRateTracker creates a tracker using the real clock.
func NewLineRateTracker() *LineRateTracker {
	return NewLineRateTrackerWithClock(realClock{})
}

// NewLineRateTrackerWithClock creates a tracker with a custom clock.
func NewLineRateTrackerWithClock(clock Clock) *LineRateTracker {
	now := clock.Now()
	t := &LineRateTracker{
		samples:   make([]sample, 0, ringSize),
		startTime: now,
		clock:     clock,
	}
	t.samples = append(t.samples, sample{timestamp: now})
	return t
}

// AddLines adds to the cumulative count. Called from the streaming side.
func (t *LineRateTracker) AddLines(n int64) {
	if n > 0 {
		t.totalLines.Add(n)
	}
}

// RecordSample stores the current cumulative count with a timestamp.
// Call once per second while the dashboard is live.
func (t *LineRateTracker) RecordSample() {
	now := t.clock.Now()
	current := t.totalLines.Load()

	t.mu.Lock()
	defer t.mu.Unlock()

	s := sample{timestamp: now, lines: current}
	if len(t.samples) < ringSize {
		t.samples = append(t.samples, s)
	} else {
		t.samples[t.writeIdx] = s
		t.writeIdx = (t.writeIdx + 1) % ringSize
	}
}

// RateStats computes the current rates from available history.
func (t *LineRateTracker) RateStats() RateStats {
	now := t.clock.Now()
	current := t.totalLines.Load()

	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := RateStats{TotalLines: current}

	if elapsed := now.Sub(t.startTime).Seconds(); elapsed > 0 {
		stats.RateTotal = float64(current) / elapsed
	}
	stats.Rate10s = t.rateOverWindow(now, current, window10s)
	stats.Rate60s = t.rateOverWindow(now, current, window60s)
	return stats
}

// rateOverWindow finds the newest sample at or before the window edge and
// derives a rate from it. Must be called with mu held.
func (t *LineRateTracker) rateOverWindow(now time.Time, current int64, window time.Duration) float64 {
	target := now.Add(-window)

	var best *sample
	var bestDiff time.Duration = -1
	for i := range t.samples {
		s := &t.samples[i]
		if s.timestamp.After(target) {
			continue
		}
		diff := target.Sub(s.timestamp)
		if bestDiff < 0 || diff < bestDiff {
			best = s
			bestDiff = diff
		}
	}
	if best == nil {
		best = t.oldestSample()
	}
	if best == nil {
		return 0
	}

	elapsed := now.Sub(best.timestamp).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(current-best.lines) / elapsed
}

// oldestSample returns the oldest retained sample. Must be called with mu held.
func (t *LineRateTracker) oldestSample() *sample {
	if len(t.samples) == 0 {
		return nil
	}
	if len(t.samples) < ringSize {
		return &t.samples[0]
	}
	return &t.samples[t.writeIdx]
}

// SampleCount returns the number of retained samples. Useful in tests.
func (t *LineRateTracker) SampleCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.samples)
}
