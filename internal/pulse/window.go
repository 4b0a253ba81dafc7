package pulse

import (
	"strings"
	"sync"

	"github.com/logpulse/logpulse/internal/matcher"
)

// ExcerptLimit is the maximum display length of the last-line excerpt.
const ExcerptLimit = 120

// Snapshot is the drained contents of a window: the per-window deltas plus
// the cumulative total at drain time.
type Snapshot struct {
	Lines    int64 // lines added since the previous drain
	Errors   int64 // error matches in the window
	Warnings int64 // warning matches in the window
	Total    int64 // cumulative lines since run start
	LastLine string // last non-empty line, truncated; "" if none yet
}

// Window is the synchronized accumulator shared between the output
// streaming side (Add) and the timer side (DrainAndReset). Drains are
// atomic with respect to concurrent adds: an increment lands either in
// the snapshot being drained or in the next window, never in both and
// never in neither.
type Window struct {
	rules *matcher.Rules

	mu       sync.Mutex
	lines    int64
	errors   int64
	warnings int64
	total    int64
	lastLine string // carried across drains so quiet windows keep an excerpt
}

// NewWindow creates a window using the given rule set for classification.
func NewWindow(rules *matcher.Rules) *Window {
	return &Window{rules: rules}
}

// Add records one observed line and returns its classification so callers
// can fan the result out (metrics) without re-matching.
func (w *Window) Add(line string) matcher.Result {
	res := w.rules.Classify(line)

	w.mu.Lock()
	w.lines++
	w.total++
	if res.Error {
		w.errors++
	}
	if res.Warning {
		w.warnings++
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		w.lastLine = Truncate(trimmed, ExcerptLimit)
	}
	w.mu.Unlock()

	return res
}

// DrainAndReset atomically snapshots the window and zeroes its counters.
// The cumulative total and the last-line excerpt survive the reset.
func (w *Window) DrainAndReset() Snapshot {
	w.mu.Lock()
	snap := Snapshot{
		Lines:    w.lines,
		Errors:   w.errors,
		Warnings: w.warnings,
		Total:    w.total,
		LastLine: w.lastLine,
	}
	w.lines = 0
	w.errors = 0
	w.warnings = 0
	w.mu.Unlock()
	return snap
}

// Total returns the cumulative line count since run start.
func (w *Window) Total() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// Truncate shortens s to at most n characters, marking the cut with an
// ellipsis when it happens. Counting is in runes so a multi-byte
// character is never cut mid-sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
