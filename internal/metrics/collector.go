// Package metrics provides Prometheus metrics for a supervised run.
//
// All metrics live on a private registry so tests and concurrent runs do
// not trample the global default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the pulse metrics for one run session.
type Collector struct {
	registry *prometheus.Registry

	info            *prometheus.GaugeVec
	linesTotal      prometheus.Counter
	errorsTotal     prometheus.Counter
	warningsTotal   prometheus.Counter
	pulsesTotal     prometheus.Counter
	childRunning    prometheus.Gauge
	lastExitCode    prometheus.Gauge
	lastWindowLines prometheus.Gauge
}

// NewCollector creates a Collector with all metrics registered on a fresh
// private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pulse_run_info",
				Help: "Information about the supervised run (value always 1)",
			},
			[]string{"session_id", "log_path", "command"},
		),
		linesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_lines_total",
			Help: "Total output lines captured from the child process",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_error_lines_total",
			Help: "Total lines matching the error pattern set",
		}),
		warningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_warning_lines_total",
			Help: "Total lines matching the warning pattern set",
		}),
		pulsesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_pulses_emitted_total",
			Help: "Total pulse lines emitted, final drain included",
		}),
		childRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_child_running",
			Help: "1 while the child process is alive, 0 otherwise",
		}),
		lastExitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_child_exit_code",
			Help: "Exit code of the child process (-1 until it exits)",
		}),
		lastWindowLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_window_lines",
			Help: "Lines observed in the most recently drained window",
		}),
	}

	c.registry.MustRegister(
		c.info,
		c.linesTotal,
		c.errorsTotal,
		c.warningsTotal,
		c.pulsesTotal,
		c.childRunning,
		c.lastExitCode,
		c.lastWindowLines,
	)

	c.lastExitCode.Set(-1)
	return c
}

// Registry returns the private registry, for the HTTP server and snapshots.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// SetRunInfo publishes the session identity labels.
func (c *Collector) SetRunInfo(sessionID, logPath, command string) {
	c.info.WithLabelValues(sessionID, logPath, command).Set(1)
}

// ObserveLine records one captured line and its classification.
func (c *Collector) ObserveLine(isError, isWarning bool) {
	c.linesTotal.Inc()
	if isError {
		c.errorsTotal.Inc()
	}
	if isWarning {
		c.warningsTotal.Inc()
	}
}

// ObservePulse records one emitted pulse and its window size.
func (c *Collector) ObservePulse(windowLines int64) {
	c.pulsesTotal.Inc()
	c.lastWindowLines.Set(float64(windowLines))
}

// SetChildRunning flips the liveness gauge.
func (c *Collector) SetChildRunning(running bool) {
	if running {
		c.childRunning.Set(1)
	} else {
		c.childRunning.Set(0)
	}
}

// RecordExit publishes the child's exit code.
func (c *Collector) RecordExit(code int) {
	c.lastExitCode.Set(float64(code))
	c.SetChildRunning(false)
}
