package app

import (
	"fmt"

	"github.com/wahlandcase/attuned.tickets/internal/output"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10
		return m, tickCmd()

	case progressMsg:
		m.steps = append(m.steps, msg.step)
		// Continue listening for more progress updates
		return m, listenForProgress(m.progressChan)

	case runResult:
		return m.handleRunResult(msg)

	case historyLoadedResult:
		m.historyEntries = msg.entries
		m.historyErr = msg.err
		m.historyIndex = 0
		return m, nil
	}

	return m, nil
}

func (m Model) handleRunResult(msg runResult) (tea.Model, tea.Cmd) {
	m.report = msg.report
	m.runErr = msg.err
	if msg.report == nil {
		m.screen = ScreenError
		return m, nil
	}
	// A halted run still shows what was reconciled, with the error on top
	m.screen = ScreenSummary
	return m, nil
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear copy feedback on any keypress
	m.copyFeedback = ""

	// Global quit
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.screen {
	case ScreenLoading:
		if msg.String() == "q" || msg.Type == tea.KeyEsc {
			return m.quit()
		}
	case ScreenSummary:
		return m.handleSummaryKey(msg)
	case ScreenError:
		return m.handleErrorKey(msg)
	case ScreenHistory:
		return m.handleHistoryKey(msg)
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.shouldQuit = true
	return m, tea.Quit
}

func (m Model) handleSummaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "enter":
		return m.quit()
	case "c":
		m.copyFeedback = m.feedback("Copied ticket list!", m.copyFn(output.List(m.report.Tickets)))
	case "j":
		m.copyFeedback = m.feedback("Copied JQL URL!", m.copyFn(m.jiraURL()))
	case "o":
		if len(m.report.Tickets) == 0 {
			m.copyFeedback = "No tickets to open"
			return m, nil
		}
		m.copyFeedback = m.feedback("Opened in browser", m.openFn(m.jiraURL()))
	case "h":
		if m.opts.History != nil {
			m.screen = ScreenHistory
			return m, loadHistoryCmd(m.opts.History)
		}
	}
	return m, nil
}

func (m Model) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "enter":
		return m.quit()
	}
	return m, nil
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "h":
		m.screen = ScreenSummary
	case "up", "k":
		if m.historyIndex > 0 {
			m.historyIndex--
		}
	case "down", "j":
		if m.historyIndex < len(m.historyEntries)-1 {
			m.historyIndex++
		}
	case "c":
		if m.historyIndex < len(m.historyEntries) {
			entry := m.historyEntries[m.historyIndex]
			m.copyFeedback = m.feedback("Copied ticket list!", m.copyFn(output.List(entry.Tickets)))
		}
	}
	return m, nil
}

func (m Model) jiraURL() string {
	return output.JiraURL(m.opts.JiraBaseURL, m.report.Tickets)
}

func (m Model) feedback(success string, err error) string {
	if err != nil {
		return fmt.Sprintf("Failed: %v", err)
	}
	return success
}
