package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SectionHeader creates a styled section header with a title and color
// Example: "─── TITLE ───────────"
func SectionHeader(title string, color lipgloss.Color) string {
	dashes := strings.Repeat("─", max(25-len(title), 0))
	headerStyle := lipgloss.NewStyle().Foreground(color)
	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return fmt.Sprintf("%s%s%s",
		headerStyle.Render("  ─── "),
		titleStyle.Render(title),
		headerStyle.Render(" "+dashes),
	)
}

// BranchFlow shows which branch is compared against which
// Example: develop ====> release-5.1
func BranchFlow(source, target string) string {
	sourceStyle := lipgloss.NewStyle().Foreground(BranchColor(source)).Bold(true)
	targetStyle := lipgloss.NewStyle().Foreground(BranchColor(target)).Bold(true)
	arrowStyle := lipgloss.NewStyle().Foreground(ColorCyan)

	return "  " + sourceStyle.Render(source) + arrowStyle.Render(" ====> ") + targetStyle.Render(target)
}

// Spinner frames using braille characters
var SpinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner returns the spinner character at the given frame index
func Spinner(frame int) string {
	return string(SpinnerFrames[frame%len(SpinnerFrames)])
}

// ProgressBar creates a progress bar
func ProgressBar(current, total int, width int) string {
	if total == 0 {
		return ""
	}

	progress := float64(current) / float64(total)
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	barStyle := lipgloss.NewStyle().Foreground(ColorGreen)
	percentStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	return fmt.Sprintf("%s %s",
		barStyle.Render(fmt.Sprintf("[%s]", bar)),
		percentStyle.Render(fmt.Sprintf("%d%%", percentage)),
	)
}

// KeyBinding renders a key binding hint
func KeyBinding(key, description string, color lipgloss.Color) string {
	keyStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	return fmt.Sprintf("%s %s",
		keyStyle.Render(key),
		descStyle.Render(description),
	)
}

// StatusIcon returns the icon and color for a source status name
func StatusIcon(status string) (string, lipgloss.Color) {
	switch status {
	case "reconciled", "success":
		return "✓", ColorGreen
	case "skipped":
		return "⊘", ColorYellow
	case "failed", "error":
		return "✗", ColorRed
	case "loading", "pending":
		return "⏳", ColorYellow
	default:
		return "·", ColorWhite
	}
}

// Box creates a rounded bordered box
func Box(content string, borderColor lipgloss.Color) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1)

	return style.Render(content)
}

// TicketList wraps ticket IDs into lines no wider than width
func TicketList(tickets []string, width int) []string {
	if len(tickets) == 0 {
		return []string{Muted("(no tickets)")}
	}

	var lines []string
	var line strings.Builder
	for _, t := range tickets {
		if line.Len() > 0 && line.Len()+1+len(t) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(t)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
