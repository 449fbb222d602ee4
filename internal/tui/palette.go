package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorInk       = lipgloss.Color("#E6E1CF")
	ColorDim       = lipgloss.Color("#6C7380")
	ColorAccent    = lipgloss.Color("#E6B450")
	ColorAccentAlt = lipgloss.Color("#73B8FF")
	ColorSuccess   = lipgloss.Color("#7FD962")
	ColorWarn      = lipgloss.Color("#F26D78")
)
