package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the interactive views.
var (
	ColorHeader    = lipgloss.Color("39")  // Blue
	ColorLabel     = lipgloss.Color("245") // Gray
	ColorValue     = lipgloss.Color("252") // Light gray
	ColorHighlight = lipgloss.Color("212") // Pink
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("240") // Dark gray
)

// Shared styles for the interactive views.
var (
	HeaderStyle  = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)
