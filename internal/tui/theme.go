package tui

import "github.com/charmbracelet/lipgloss"

var (
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	appStyle = lipgloss.NewStyle().
			Foreground(Text).
			Padding(1, 2)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface1).
			Padding(1, 2)

	titleStyle    = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(Subtext0)
	hotStyle      = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(Lavender).Bold(true)
	restStyle     = lipgloss.NewStyle().Foreground(Green).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(Red)
	countdown     = lipgloss.NewStyle().Foreground(Text).Bold(true).Padding(0, 1)
)
