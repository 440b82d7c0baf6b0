package app

import (
	"fmt"
	"strings"

	"github.com/wahlandcase/attuned.tickets/internal/models"
	"github.com/wahlandcase/attuned.tickets/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

// contentWidth returns the usable content width, adapting to terminal size
func (m Model) contentWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	return w
}

// View renders the application
func (m Model) View() string {
	if m.shouldQuit {
		return ""
	}

	var sections []string

	sections = append(sections, ui.RenderBanner(m.opts.DryRun))
	sections = append(sections, "")
	sections = append(sections, ui.BranchFlow(m.opts.Request.SourceBranch, m.opts.Request.TargetBranch))
	sections = append(sections, "")

	outerBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPurple).
		Width(m.contentWidth()).
		Padding(1, 2)

	var content string
	switch m.screen {
	case ScreenLoading:
		content = m.renderLoading()
	case ScreenSummary:
		content = m.renderSummary()
	case ScreenError:
		content = m.renderError()
	case ScreenHistory:
		content = m.renderHistory()
	}
	sections = append(sections, outerBox.Render(content))

	// Status bar
	sections = append(sections, "")
	sections = append(sections, m.renderStatusBar())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, strings.Join(sections, "\n"))
}

func (m Model) renderLoading() string {
	spinnerStyle := lipgloss.NewStyle().Foreground(ui.ColorCyan)
	textStyle := lipgloss.NewStyle().Foreground(ui.ColorCyan)

	message := "Preparing..."
	if len(m.steps) > 0 {
		message = m.steps[len(m.steps)-1]
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%s %s", spinnerStyle.Render(ui.Spinner(m.spinnerFrame)), textStyle.Render(message)))
	lines = append(lines, "")
	lines = append(lines, ui.ProgressBar(len(m.steps), len(m.opts.Request.Sources), 30))

	// Steps already passed
	for _, step := range m.steps[:max(len(m.steps)-1, 0)] {
		lines = append(lines, ui.Muted("  ✓ "+step))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSummary() string {
	var lines []string

	if m.runErr != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(ui.ColorRed).Bold(true).Render("✗ Run halted: ")+m.runErr.Error())
		lines = append(lines, "")
	}

	lines = append(lines, ui.SectionHeader("SOURCES", ui.ColorCyan))
	lines = append(lines, "")
	for _, res := range m.report.Results {
		status := models.StatusName(res.Status)
		icon, color := ui.StatusIcon(status)
		iconStyle := lipgloss.NewStyle().Foreground(color)

		line := fmt.Sprintf("  %s %-28s %s", iconStyle.Render(icon), res.Source.Name, ui.Muted(res.SourceBranch))
		if models.IsStatusReconciled(res.Status) {
			line += fmt.Sprintf("  %d tickets", len(res.Tickets))
		} else if reason := models.GetStatusReason(res.Status); reason != "" {
			line += "  " + iconStyle.Render(reason)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	lines = append(lines, ui.SectionHeader(fmt.Sprintf("TICKETS (%d)", len(m.report.Tickets)), ui.ColorGreen))
	lines = append(lines, "")
	for _, l := range ui.TicketList(m.report.Tickets, m.contentWidth()-8) {
		lines = append(lines, "  "+l)
	}

	if m.copyFeedback != "" {
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Foreground(ui.ColorGreen).Render("  "+m.copyFeedback))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderError() string {
	var lines []string

	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorRed).Bold(true)

	lines = append(lines, errorStyle.Render("✗ Error"))
	lines = append(lines, "")
	if m.runErr != nil {
		lines = append(lines, m.runErr.Error())
	}
	lines = append(lines, "")
	lines = append(lines, "Press Enter to quit")

	return strings.Join(lines, "\n")
}

func (m Model) renderHistory() string {
	var lines []string
	lines = append(lines, ui.SectionHeader("RECENT RUNS", ui.ColorMagenta))
	lines = append(lines, "")

	switch {
	case m.historyErr != nil:
		lines = append(lines, lipgloss.NewStyle().Foreground(ui.ColorRed).Render(m.historyErr.Error()))
	case len(m.historyEntries) == 0:
		lines = append(lines, ui.Muted("  No runs recorded yet"))
	}

	for i, e := range m.historyEntries {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(ui.ColorWhite)
		if i == m.historyIndex {
			prefix = "▶ "
			style = style.Foreground(ui.ColorCyan).Bold(true)
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%s  %s ← %s  %d tickets",
			prefix, e.CreatedAt.Local().Format("Jan 02 15:04"), e.TargetBranch, e.SourceBranch, len(e.Tickets))))
	}

	if m.copyFeedback != "" {
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Foreground(ui.ColorGreen).Render("  "+m.copyFeedback))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar() string {
	var hints []string

	switch m.screen {
	case ScreenLoading:
		hints = []string{
			ui.KeyBinding("q", "Cancel", ui.ColorRed),
		}
	case ScreenSummary:
		hints = []string{
			ui.KeyBinding("c", "Copy list", ui.ColorBlue),
			ui.KeyBinding("j", "Copy JQL", ui.ColorBlue),
			ui.KeyBinding("o", "Open JQL", ui.ColorBlue),
		}
		if m.opts.History != nil {
			hints = append(hints, ui.KeyBinding("h", "History", ui.ColorMagenta))
		}
		hints = append(hints, ui.KeyBinding("q", "Quit", ui.ColorRed))
	case ScreenError:
		hints = []string{
			ui.KeyBinding("q", "Quit", ui.ColorRed),
		}
	case ScreenHistory:
		hints = []string{
			ui.KeyBinding("↑↓", "Navigate", ui.ColorWhite),
			ui.KeyBinding("c", "Copy list", ui.ColorBlue),
			ui.KeyBinding("Esc", "Back", ui.ColorYellow),
		}
	}

	return "  " + strings.Join(hints, "   ")
}
