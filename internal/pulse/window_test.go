package pulse

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/logpulse/logpulse/internal/matcher"
)

func TestWindowAddAndDrain(t *testing.T) {
	w := NewWindow(matcher.Default())

	w.Add("starting up")
	w.Add("ERROR: boom")
	w.Add("WARNING: low disk")
	w.Add("")

	snap := w.DrainAndReset()
	if snap.Lines != 4 {
		t.Errorf("Lines = %d, want 4", snap.Lines)
	}
	if snap.Errors != 1 {
		t.Errorf("Errors = %d, want 1", snap.Errors)
	}
	if snap.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", snap.Warnings)
	}
	if snap.Total != 4 {
		t.Errorf("Total = %d, want 4", snap.Total)
	}
	// Empty trailing line does not displace the excerpt.
	if snap.LastLine != "WARNING: low disk" {
		t.Errorf("LastLine = %q, want %q", snap.LastLine, "WARNING: low disk")
	}
}

func TestWindowResetKeepsTotalAndExcerpt(t *testing.T) {
	w := NewWindow(matcher.Default())

	w.Add("one")
	w.Add("two")
	first := w.DrainAndReset()
	if first.Lines != 2 || first.Total != 2 {
		t.Fatalf("first drain = %+v", first)
	}

	// A quiet window drains to zero deltas but keeps total and excerpt.
	second := w.DrainAndReset()
	if second.Lines != 0 || second.Errors != 0 || second.Warnings != 0 {
		t.Errorf("quiet window deltas = %+v, want zeros", second)
	}
	if second.Total != 2 {
		t.Errorf("Total = %d, want 2", second.Total)
	}
	if second.LastLine != "two" {
		t.Errorf("LastLine = %q, want %q", second.LastLine, "two")
	}
}

func TestWindowBothClassesSameWindow(t *testing.T) {
	w := NewWindow(matcher.Default())

	w.Add("ERROR: DeprecationWarning escalated")
	snap := w.DrainAndReset()
	if snap.Errors != 1 || snap.Warnings != 1 {
		t.Errorf("snapshot = %+v, want errors=1 warnings=1", snap)
	}
}

func TestWindowExcerptTruncation(t *testing.T) {
	w := NewWindow(matcher.Default())

	long := strings.Repeat("x", ExcerptLimit+40)
	w.Add(long)
	snap := w.DrainAndReset()

	if len(snap.LastLine) != ExcerptLimit {
		t.Errorf("excerpt length = %d, want %d", len(snap.LastLine), ExcerptLimit)
	}
	if !strings.HasSuffix(snap.LastLine, "...") {
		t.Errorf("truncated excerpt should end with ellipsis, got %q", snap.LastLine)
	}
}

func TestWindowConcurrentAddsNotLost(t *testing.T) {
	w := NewWindow(matcher.Default())

	const workers = 8
	const perWorker = 500

	var wg sync.WaitGroup
	drained := make(chan Snapshot, 64)
	done := make(chan struct{})

	// Drain concurrently with adds, like the timer side does.
	go func() {
		defer close(drained)
		for {
			select {
			case <-done:
				drained <- w.DrainAndReset()
				return
			default:
				drained <- w.DrainAndReset()
			}
		}
	}()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				w.Add(fmt.Sprintf("worker %d line %d", id, j))
			}
		}(i)
	}
	wg.Wait()
	close(done)

	var sum int64
	var lastTotal int64
	for snap := range drained {
		sum += snap.Lines
		if snap.Total < lastTotal {
			t.Errorf("Total went backwards: %d -> %d", lastTotal, snap.Total)
		}
		lastTotal = snap.Total
	}

	if sum != workers*perWorker {
		t.Errorf("sum of drained deltas = %d, want %d", sum, workers*perWorker)
	}
	if w.Total() != workers*perWorker {
		t.Errorf("Total() = %d, want %d", w.Total(), workers*perWorker)
	}
}

func TestTruncate(t *testing.T) {
	testCases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 0, ""},
		{"hello", 2, "he"},
		{"hello", 3, "hel"},
		// Rune counting: multi-byte characters are never cut mid-sequence.
		{"héllo wörld", 8, "héllo..."},
		{"日本語のログ行です", 7, "日本語の..."},
		{"日本語", 3, "日本語"},
	}

	for _, tc := range testCases {
		if got := Truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
		if !utf8.ValidString(Truncate(tc.in, tc.n)) {
			t.Errorf("Truncate(%q, %d) produced invalid UTF-8", tc.in, tc.n)
		}
	}
}
