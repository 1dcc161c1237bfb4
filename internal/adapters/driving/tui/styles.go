package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains pre-configured lipgloss styles for the ask session.
type Styles struct {
	// Title style for the header line.
	Title lipgloss.Style

	// Prompt style for the input label.
	Prompt lipgloss.Style

	// Answer style for the answer body.
	Answer lipgloss.Style

	// Citation style for source lines.
	Citation lipgloss.Style

	// Muted style for help text and store stats.
	Muted lipgloss.Style

	// Error style for failures.
	Error lipgloss.Style
}

// DefaultStyles returns the default styling.
func DefaultStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")),
		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4")),
		Answer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")),
		Citation: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")),
	}
}
