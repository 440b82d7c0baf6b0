// Package app is the interactive view of a reconciliation run.
package app

import (
	"context"
	"time"

	"github.com/wahlandcase/attuned.tickets/internal/history"
	"github.com/wahlandcase/attuned.tickets/internal/output"
	"github.com/wahlandcase/attuned.tickets/internal/reconcile"

	tea "github.com/charmbracelet/bubbletea"
)

// Options configures a Model
type Options struct {
	Provider            reconcile.LogProvider
	DefaultSourceBranch string
	Request             reconcile.Request
	JiraBaseURL         string
	DryRun              bool
	// History is listed on the history screen; nil hides it
	History *history.Store
}

// Model is the main application state
type Model struct {
	opts    Options
	service *reconcile.Service

	// Navigation
	screen     Screen
	shouldQuit bool

	// Run state
	ctx          context.Context
	cancel       context.CancelFunc
	progressChan chan string
	steps        []string
	report       *reconcile.Report
	runErr       error

	// History screen
	historyEntries []history.Entry
	historyErr     error
	historyIndex   int

	// UI state
	spinnerFrame int
	copyFeedback string // Brief "Copied!" message, clears on next action

	// Clipboard and browser, swapped in tests
	copyFn func(string) error
	openFn func(string) error

	// Window size
	width  int
	height int
}

// New creates a new application model
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	progress := make(chan string, len(opts.Request.Sources)+1)

	service := reconcile.NewService(opts.Provider, opts.DefaultSourceBranch).
		OnProgress(func(step string) {
			select {
			case progress <- step:
			default:
			}
		})

	return Model{
		opts:         opts,
		service:      service,
		screen:       ScreenLoading,
		ctx:          ctx,
		cancel:       cancel,
		progressChan: progress,
		copyFn:       output.Copy,
		openFn:       output.OpenURL,
		width:        80,
		height:       24,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
		runCmd(m.ctx, m.service, m.opts.Request, m.progressChan),
		listenForProgress(m.progressChan),
	)
}

// Report returns the finished run, nil while loading or after a failed start
func (m Model) Report() *reconcile.Report {
	return m.report
}

// Err returns the run error, if any
func (m Model) Err() error {
	return m.runErr
}

// tickMsg is sent on each tick for animations
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}
