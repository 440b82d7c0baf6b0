package app

import (
	"context"

	"github.com/wahlandcase/attuned.tickets/internal/history"
	"github.com/wahlandcase/attuned.tickets/internal/reconcile"

	tea "github.com/charmbracelet/bubbletea"
)

// runResult is sent when the reconciliation run finishes
type runResult struct {
	report *reconcile.Report
	err    error
}

// progressMsg is sent for real-time progress updates during the run
type progressMsg struct {
	step string
}

// historyLoadedResult carries the entries for the history screen
type historyLoadedResult struct {
	entries []history.Entry
	err     error
}

// runCmd runs the reconciliation and closes progress when done
func runCmd(ctx context.Context, service *reconcile.Service, req reconcile.Request, progress chan string) tea.Cmd {
	return func() tea.Msg {
		defer close(progress)
		report, err := service.Run(ctx, req)
		return runResult{report: report, err: err}
	}
}

// listenForProgress creates a subscription that listens to the progress channel
func listenForProgress(ch chan string) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return nil
		}
		step, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg{step: step}
	}
}

func loadHistoryCmd(store *history.Store) tea.Cmd {
	return func() tea.Msg {
		entries, err := store.Load()
		return historyLoadedResult{entries: entries, err: err}
	}
}
