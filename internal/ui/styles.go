package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Note: Warp terminal fix is in internal/termfix package, imported first in main.go

var (
	ColorCyan     = lipgloss.Color("#00FFFF")
	ColorGreen    = lipgloss.Color("#00FF00")
	ColorYellow   = lipgloss.Color("#FFFF00")
	ColorRed      = lipgloss.Color("#FF0000")
	ColorMagenta  = lipgloss.Color("#FF00FF")
	ColorBlue     = lipgloss.Color("#5555FF")
	ColorPurple   = lipgloss.Color("#AA55FF")
	ColorOrange   = lipgloss.Color("#FFA500")
	ColorWhite    = lipgloss.Color("#FFFFFF")
	ColorDarkGray = lipgloss.Color("8") // ANSI 8
)

// BranchColor picks a color by branch role: integration branches green,
// merged worker branches magenta, release branches orange
func BranchColor(branch string) lipgloss.Color {
	switch {
	case branch == "develop" || branch == "dev":
		return ColorGreen
	case strings.HasPrefix(branch, "worker/"):
		return ColorMagenta
	case branch == "main" || branch == "master":
		return ColorRed
	case strings.Contains(branch, "release") || strings.HasPrefix(branch, "worker-app-"):
		return ColorOrange
	default:
		return ColorWhite
	}
}

// Label renders text as a bold label in color
func Label(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(text)
}

// Muted renders secondary text
func Muted(text string) string {
	return lipgloss.NewStyle().Foreground(ColorDarkGray).Render(text)
}
