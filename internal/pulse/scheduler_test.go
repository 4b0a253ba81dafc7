package pulse

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/logpulse/logpulse/internal/matcher"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// syncBuffer guards a bytes.Buffer for concurrent writer/reader access.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFormatPulse(t *testing.T) {
	testCases := []struct {
		name        string
		snap        Snapshot
		includeLast bool
		want        string
	}{
		{
			name: "with excerpt",
			snap: Snapshot{Lines: 243, Errors: 0, Warnings: 1, Total: 12034,
				LastLine: "compiling module foo"},
			includeLast: true,
			want:        `last 10s: +243 lines | errors:0 | warnings:1 | total:12034 | last:"compiling module foo"`,
		},
		{
			name:        "no excerpt yet",
			snap:        Snapshot{Lines: 0, Total: 0},
			includeLast: true,
			want:        "last 10s: +0 lines | errors:0 | warnings:0 | total:0",
		},
		{
			name: "excerpt suppressed",
			snap: Snapshot{Lines: 5, Errors: 2, Warnings: 0, Total: 25,
				LastLine: "ERROR: boom"},
			includeLast: false,
			want:        "last 10s: +5 lines | errors:2 | warnings:0 | total:25",
		},
	}

	for _, tc := range testCases {
		got := FormatPulse(10, tc.snap, tc.includeLast)
		if got != tc.want {
			t.Errorf("%s: FormatPulse = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSchedulerFinalDrainOnExit(t *testing.T) {
	w := NewWindow(matcher.Default())
	var out syncBuffer

	var observed []Snapshot
	s := NewScheduler(SchedulerConfig{
		Window:        w,
		Interval:      time.Hour, // never ticks during the test
		WindowSeconds: 10,
		IncludeLast:   true,
		Out:           &out,
		Logger:        testLogger(),
		Observer: func(snap Snapshot, line string) {
			observed = append(observed, snap)
		},
	})

	w.Add("one")
	w.Add("ERROR: boom")
	w.Add("three")

	exited := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background(), exited)
	}()

	close(exited)
	<-done

	if s.State() != StateStopped {
		t.Errorf("State = %v, want %v", s.State(), StateStopped)
	}
	if len(observed) != 1 {
		t.Fatalf("observed %d pulses, want 1", len(observed))
	}
	if observed[0].Lines != 3 || observed[0].Total != 3 || observed[0].Errors != 1 {
		t.Errorf("final snapshot = %+v", observed[0])
	}

	line := strings.TrimSpace(out.String())
	want := `last 10s: +3 lines | errors:1 | warnings:0 | total:3 | last:"three"`
	if line != want {
		t.Errorf("pulse line = %q, want %q", line, want)
	}
}

func TestSchedulerPeriodicThenDrain(t *testing.T) {
	w := NewWindow(matcher.Default())
	var out syncBuffer

	var mu sync.Mutex
	var observed []Snapshot
	s := NewScheduler(SchedulerConfig{
		Window:        w,
		Interval:      20 * time.Millisecond,
		WindowSeconds: 1,
		IncludeLast:   false,
		Out:           &out,
		Logger:        testLogger(),
		Observer: func(snap Snapshot, line string) {
			mu.Lock()
			observed = append(observed, snap)
			mu.Unlock()
		},
	})

	exited := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background(), exited)
	}()

	// Feed lines across several tick periods, then signal exit.
	for i := 0; i < 10; i++ {
		w.Add("line")
		time.Sleep(10 * time.Millisecond)
	}
	close(exited)
	<-done

	mu.Lock()
	defer mu.Unlock()

	if len(observed) < 2 {
		t.Fatalf("observed %d pulses, want at least 2", len(observed))
	}

	// Sum of deltas equals the final cumulative total, totals monotonic.
	var sum int64
	var lastTotal int64
	for _, snap := range observed {
		sum += snap.Lines
		if snap.Total < lastTotal {
			t.Errorf("total decreased: %d -> %d", lastTotal, snap.Total)
		}
		lastTotal = snap.Total
	}
	if sum != 10 {
		t.Errorf("sum of deltas = %d, want 10", sum)
	}
	if final := observed[len(observed)-1]; final.Total != 10 {
		t.Errorf("final total = %d, want 10", final.Total)
	}
}

func TestSchedulerContextCancelDrainsOnce(t *testing.T) {
	w := NewWindow(matcher.Default())
	var out syncBuffer

	var count int
	s := NewScheduler(SchedulerConfig{
		Window:        w,
		Interval:      time.Hour,
		WindowSeconds: 10,
		Out:           &out,
		Logger:        testLogger(),
		Observer: func(Snapshot, string) {
			count++
		},
	})

	w.Add("captured before interrupt")

	ctx, cancel := context.WithCancel(context.Background())
	exited := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, exited)
	}()

	cancel()
	<-done
	// A late exit notification must not produce a second final drain.
	close(exited)

	if count != 1 {
		t.Errorf("final drains = %d, want 1", count)
	}
	if s.State() != StateStopped {
		t.Errorf("State = %v, want %v", s.State(), StateStopped)
	}
}

func TestSchedulerStateLifecycle(t *testing.T) {
	s := NewScheduler(SchedulerConfig{
		Window:   NewWindow(matcher.Default()),
		Interval: time.Hour,
		Out:      io.Discard,
		Logger:   testLogger(),
	})

	if s.State() != StateIdle {
		t.Errorf("initial State = %v, want %v", s.State(), StateIdle)
	}

	exited := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background(), exited)
	}()

	close(exited)
	<-done

	if !s.State().IsTerminal() {
		t.Errorf("State after Run = %v, want terminal", s.State())
	}
	if s.Pulses() != 1 {
		t.Errorf("Pulses = %d, want 1", s.Pulses())
	}
}
