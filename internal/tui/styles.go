// Package tui provides a live terminal dashboard for a supervised run.
//
// The TUI uses Bubble Tea for the application framework and Lipgloss for
// styling. It replaces the one-line pulse output with a full-screen view
// showing totals, line rates, and the most recent pulses.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan

	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red

	colorText      = lipgloss.Color("#E5E7EB") // Light gray
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray
	colorBorder    = lipgloss.Color("#374151") // Border gray
)

// =============================================================================
// Styles
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 1).
			MarginBottom(1)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true).
				MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	errorValueStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningValueStyle = lipgloss.NewStyle().
				Foreground(colorWarning).
				Bold(true)

	okValueStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	pulseLineStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	lastLineStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			MarginTop(1)
)

// statusStyle picks a style for the child status string.
func statusStyle(running bool, exitCode int) lipgloss.Style {
	if running {
		return okValueStyle
	}
	if exitCode == 0 {
		return okValueStyle
	}
	return errorValueStyle
}
