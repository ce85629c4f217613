package cmd

import "github.com/charmbracelet/lipgloss"

var (
	successColor = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("#666666")

	// titleStyle is used for section headings above tables.
	titleStyle = lipgloss.NewStyle().
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// subtleStyle formats secondary detail lines.
	subtleStyle = lipgloss.NewStyle().
			Foreground(subtleColor)
)
