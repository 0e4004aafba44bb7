// Package styles provides shared lipgloss styles for CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#7aa2f7")
	ColorMuted   = lipgloss.Color("#565f89")
	ColorSuccess = lipgloss.Color("#9ece6a")
	ColorWarning = lipgloss.Color("#e0af68")
	ColorError   = lipgloss.Color("#f7768e")
)

var (
	// Title renders section headers in CLI output.
	Title = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	// Subtle renders secondary detail like byte counts and timestamps.
	Subtle = lipgloss.NewStyle().Foreground(ColorMuted)
	// Success renders confirmations.
	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	// Warning renders non-fatal notices such as dry-run banners.
	Warning = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
	// Error renders failures.
	Error = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
)
