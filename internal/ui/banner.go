package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Banner is the ASCII art header of the interactive view
var Banner = []string{
	"    _  _____ _____ _____ _____  __",
	"   / \\|_   _|_   _|_   _|_ _\\ \\/ /",
	"  / _ \\ | |   | |   | |  | | \\  / ",
	" / ___ \\| |   | |   | |  | | /  \\ ",
	"/_/   \\_\\_|   |_|   |_| |___/_/\\_\\",
}

// RenderBanner returns the styled banner, with a warning line in dry run mode
func RenderBanner(dryRun bool) string {
	bannerStyle := lipgloss.NewStyle().Foreground(ColorCyan)

	lines := make([]string, 0, len(Banner)+2)
	for _, line := range Banner {
		lines = append(lines, bannerStyle.Render(line))
	}

	if dryRun {
		lines = append(lines, "")
		warningStyle := lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)
		lines = append(lines, warningStyle.Render("⚠ DRY RUN MODE"))
	}

	return strings.Join(lines, "\n")
}
