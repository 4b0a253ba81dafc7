package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/logpulse/logpulse/internal/pulse"
)

// render builds the full dashboard screen.
func (m Model) render() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTotals())
	b.WriteString("\n")
	b.WriteString(m.renderRates())
	b.WriteString("\n")
	b.WriteString(m.renderPulses())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// =============================================================================
// Sections
// =============================================================================

func (m Model) renderHeader() string {
	title := headerStyle.Render("logpulse")

	status := "running"
	if !m.childRunning {
		if m.interrupted {
			status = "interrupted"
		} else if m.exitCode == 0 {
			status = "exited ok"
		} else {
			status = fmt.Sprintf("exited %d", m.exitCode)
		}
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top,
		title,
		" ",
		statusStyle(m.childRunning, m.exitCode).Render(status),
		labelStyle.Render("  up "+formatDuration(m.Elapsed())),
	)

	cmd := labelStyle.Render("cmd: ") + valueStyle.Render(truncateTo(m.command, m.width-6))
	log := labelStyle.Render("log: ") + valueStyle.Render(truncateTo(m.logPath, m.width-6))

	return line + "\n" + cmd + "\n" + log
}

func (m Model) renderTotals() string {
	header := sectionHeaderStyle.Render("Totals")

	row := fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("lines"),
		valueStyle.Render(formatNumber(m.totalLines)),
		labelStyle.Render("errors"),
		errorValueStyle.Render(formatNumber(m.totalErrors)),
		labelStyle.Render("warnings"),
		warningValueStyle.Render(formatNumber(m.totalWarnings)),
	)

	last := ""
	if m.lastLine != "" {
		last = "\n" + labelStyle.Render("last: ") +
			lastLineStyle.Render(truncateTo(m.lastLine, m.width-8))
	}

	return header + "\n" + row + last
}

func (m Model) renderRates() string {
	header := sectionHeaderStyle.Render("Line Rate")

	row := fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("10s"),
		valueStyle.Render(formatRate(m.rates.Rate10s)),
		labelStyle.Render("60s"),
		valueStyle.Render(formatRate(m.rates.Rate60s)),
		labelStyle.Render("run"),
		valueStyle.Render(formatRate(m.rates.RateTotal)),
	)

	return header + "\n" + row
}

func (m Model) renderPulses() string {
	header := sectionHeaderStyle.Render("Recent Pulses")

	if len(m.recentPulses) == 0 {
		return header + "\n" + labelStyle.Render("(waiting for first pulse)")
	}

	lines := make([]string, 0, len(m.recentPulses))
	for _, p := range m.recentPulses {
		lines = append(lines, pulseLineStyle.Render(truncateTo(p, m.width-4)))
	}

	return header + "\n" + boxStyle.Width(min(m.width-2, 100)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	if m.childRunning {
		return footerStyle.Render("q: interrupt and exit")
	}
	return footerStyle.Render("q: close")
}

// =============================================================================
// Helpers
// =============================================================================

func truncateTo(s string, n int) string {
	if n < 10 {
		n = 10
	}
	return pulse.Truncate(s, n)
}
