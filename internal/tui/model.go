package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/logpulse/logpulse/internal/pulse"
	"github.com/logpulse/logpulse/internal/timeseries"
)

// How many recent pulse lines the dashboard keeps.
const pulseHistory = 8

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to refresh rates and uptime.
type TickMsg time.Time

// PulseMsg carries a drained window snapshot and its formatted line.
type PulseMsg struct {
	Snapshot pulse.Snapshot
	Line     string
}

// ExitMsg reports that the supervised command has exited.
type ExitMsg struct {
	ExitCode    int
	Interrupted bool
}

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// RateSource provides current line rates.
type RateSource interface {
	RateStats() timeseries.RateStats
}

// Config holds dashboard configuration.
type Config struct {
	Command    string
	LogPath    string
	SessionID  string
	RateSource RateSource

	// Interrupt is called when the user quits the dashboard while the
	// command is still running. It must not block.
	Interrupt func()
}

// Model represents the dashboard state.
type Model struct {
	command    string
	logPath    string
	sessionID  string
	rateSource RateSource
	interrupt  func()

	startTime  time.Time
	lastUpdate time.Time

	totalLines    int64
	totalErrors   int64
	totalWarnings int64
	lastLine      string
	recentPulses  []string
	rates         timeseries.RateStats

	childRunning bool
	exitCode     int
	interrupted  bool

	width    int
	height   int
	quitting bool
}

// New creates a dashboard model.
func New(cfg Config) Model {
	return Model{
		command:      cfg.Command,
		logPath:      cfg.LogPath,
		sessionID:    cfg.SessionID,
		rateSource:   cfg.RateSource,
		interrupt:    cfg.Interrupt,
		startTime:    time.Now(),
		lastUpdate:   time.Now(),
		childRunning: true,
		exitCode:     -1,
		width:        80,
		height:       24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.childRunning && m.interrupt != nil {
				m.interrupt()
				// Stay up until ExitMsg arrives so the final totals
				// are visible in the exit summary.
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.rateSource != nil {
			m.rates = m.rateSource.RateStats()
		}
		m.lastUpdate = time.Now()
		if !m.childRunning {
			return m, nil
		}
		return m, tickCmd()

	case PulseMsg:
		m.totalLines = msg.Snapshot.Total
		m.totalErrors += msg.Snapshot.Errors
		m.totalWarnings += msg.Snapshot.Warnings
		if msg.Snapshot.LastLine != "" {
			m.lastLine = msg.Snapshot.LastLine
		}
		m.recentPulses = append(m.recentPulses, msg.Line)
		if len(m.recentPulses) > pulseHistory {
			m.recentPulses = m.recentPulses[len(m.recentPulses)-pulseHistory:]
		}
		m.lastUpdate = time.Now()
		return m, nil

	case ExitMsg:
		m.childRunning = false
		m.exitCode = msg.ExitCode
		m.interrupted = msg.Interrupted
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// =============================================================================
// Commands
// =============================================================================

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the run started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// TotalLines returns the running line total.
func (m Model) TotalLines() int64 { return m.totalLines }

// ChildRunning reports whether the supervised command is still up.
func (m Model) ChildRunning() bool { return m.childRunning }

// =============================================================================
// Helpers for external use
// =============================================================================

// SendPulse forwards a pulse to a running program.
func SendPulse(p *tea.Program, snap pulse.Snapshot, line string) {
	if p != nil {
		p.Send(PulseMsg{Snapshot: snap, Line: line})
	}
}

// SendExit reports the command's exit to a running program.
func SendExit(p *tea.Program, exitCode int, interrupted bool) {
	if p != nil {
		p.Send(ExitMsg{ExitCode: exitCode, Interrupted: interrupted})
	}
}

// SendQuit tells a running program to shut down.
func SendQuit(p *tea.Program) {
	if p != nil {
		p.Send(QuitMsg{})
	}
}

// =============================================================================
// Formatting Helpers (used by view.go)
// =============================================================================

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatNumber formats a number with K/M suffixes.
func formatNumber(n int64) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

// formatRate formats a per-second rate with appropriate precision.
func formatRate(rate float64) string {
	if rate >= 1000 {
		return fmt.Sprintf("%.1fK/s", rate/1000)
	}
	if rate >= 1 {
		return fmt.Sprintf("%.1f/s", rate)
	}
	return fmt.Sprintf("%.2f/s", rate)
}
