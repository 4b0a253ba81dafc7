package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.ObserveLine(false, false)
	c.ObserveLine(true, false)
	c.ObserveLine(false, true)
	c.ObserveLine(true, true)
	c.ObservePulse(4)

	testCases := []struct {
		name string
		want float64
	}{
		{"pulse_lines_total", 4},
		{"pulse_error_lines_total", 2},
		{"pulse_warning_lines_total", 2},
		{"pulse_pulses_emitted_total", 1},
		{"pulse_window_lines", 4},
	}

	for _, tc := range testCases {
		got, ok := c.Value(tc.name)
		if !ok {
			t.Errorf("%s: not found", tc.name)
			continue
		}
		if got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestChildLifecycleGauges(t *testing.T) {
	c := NewCollector()

	if got, _ := c.Value("pulse_child_exit_code"); got != -1 {
		t.Errorf("initial exit code gauge = %v, want -1", got)
	}

	c.SetChildRunning(true)
	if got, _ := c.Value("pulse_child_running"); got != 1 {
		t.Errorf("child running = %v, want 1", got)
	}

	c.RecordExit(7)
	if got, _ := c.Value("pulse_child_exit_code"); got != 7 {
		t.Errorf("exit code = %v, want 7", got)
	}
	if got, _ := c.Value("pulse_child_running"); got != 0 {
		t.Errorf("child running after exit = %v, want 0", got)
	}
}

func TestValueUnknownMetric(t *testing.T) {
	c := NewCollector()
	if _, ok := c.Value("no_such_metric"); ok {
		t.Errorf("Value should report missing metrics")
	}
}

func TestIndependentRegistries(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.ObserveLine(true, false)

	if got, _ := b.Value("pulse_lines_total"); got != 0 {
		t.Errorf("collectors share state: b lines = %v, want 0", got)
	}
}

func TestRunInfoLabels(t *testing.T) {
	c := NewCollector()
	c.SetRunInfo("abc-123", "/tmp/x.log", "make test")

	var buf bytes.Buffer
	if err := c.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"pulse_run_info", "abc-123", "/tmp/x.log", "make test"} {
		if !strings.Contains(out, want) {
			t.Errorf("snapshot missing %q:\n%s", want, out)
		}
	}
}
