package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wahlandcase/attuned.tickets/internal/history"
	"github.com/wahlandcase/attuned.tickets/internal/models"
	"github.com/wahlandcase/attuned.tickets/internal/reconcile"

	tea "github.com/charmbracelet/bubbletea"
)

func testOptions(provider reconcile.LogProvider) Options {
	return Options{
		Provider:            provider,
		DefaultSourceBranch: "develop",
		Request: reconcile.Request{
			TargetBranch:    "release-1",
			SourceBranch:    "develop",
			Sources:         []models.Source{models.NewSource("worker app", "./")},
			AllowedPrefixes: []string{"AFE-", "RSB-", "SPB-", "TABT-"},
		},
		JiraBaseURL: "https://example.atlassian.net",
		DryRun:      true,
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runToSummary executes the run command synchronously and feeds its results back
func runToSummary(t *testing.T, m Model) Model {
	t.Helper()
	msg := runCmd(m.ctx, m.service, m.opts.Request, m.progressChan)()
	for step := range m.progressChan {
		next, _ := m.Update(progressMsg{step: step})
		m = next.(Model)
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_RunToSummary(t *testing.T) {
	m := runToSummary(t, New(testOptions(reconcile.DryRun{})))

	if m.screen != ScreenSummary {
		t.Fatalf("screen = %s, want Summary", m.screen)
	}
	if m.Err() != nil {
		t.Errorf("Err() = %v", m.Err())
	}
	if got := len(m.Report().Tickets); got != 4 {
		t.Errorf("tickets = %d, want 4", got)
	}
	if len(m.steps) != 1 || m.steps[0] != "Fetching commits of worker app" {
		t.Errorf("steps = %q", m.steps)
	}

	view := m.View()
	for _, want := range []string{"worker app", "TICKETS (4)", "AFE-1234", "Copy JQL"} {
		if !strings.Contains(view, want) {
			t.Errorf("summary view missing %q", want)
		}
	}
}

func TestModel_SummaryKeys(t *testing.T) {
	m := runToSummary(t, New(testOptions(reconcile.DryRun{})))

	var copied, opened string
	m.copyFn = func(s string) error { copied = s; return nil }
	m.openFn = func(s string) error { opened = s; return nil }

	next, _ := m.Update(key("c"))
	m = next.(Model)
	if copied != "AFE-1234 AFE-1235 RSB-90 SPB-12" {
		t.Errorf("copied list = %q", copied)
	}
	if m.copyFeedback != "Copied ticket list!" {
		t.Errorf("feedback = %q", m.copyFeedback)
	}

	next, _ = m.Update(key("j"))
	m = next.(Model)
	if !strings.HasPrefix(copied, "https://example.atlassian.net/issues/?jql=issueKey%20in%20(AFE-1234%2C%20") {
		t.Errorf("copied JQL = %q", copied)
	}

	next, _ = m.Update(key("o"))
	m = next.(Model)
	if opened != copied {
		t.Errorf("opened = %q, want the JQL URL", opened)
	}

	m.copyFn = func(string) error { return errors.New("no clipboard") }
	next, _ = m.Update(key("c"))
	m = next.(Model)
	if !strings.Contains(m.copyFeedback, "no clipboard") {
		t.Errorf("feedback = %q", m.copyFeedback)
	}

	next, cmd := m.Update(key("q"))
	m = next.(Model)
	if !m.shouldQuit || cmd == nil {
		t.Error("q should quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting should cancel the run context")
	}
}

type failingProvider struct{ reconcile.DryRun }

func (failingProvider) FetchCherryPickFiltered(context.Context, models.Source, string, string) ([]string, error) {
	return nil, errors.New("couldn't find remote ref release-1")
}

func TestModel_HaltedRunShowsError(t *testing.T) {
	m := runToSummary(t, New(testOptions(failingProvider{})))

	if m.screen != ScreenSummary {
		t.Fatalf("screen = %s, want Summary with the halt", m.screen)
	}
	if m.Err() == nil {
		t.Fatal("Err() = nil")
	}
	if !strings.Contains(m.View(), "Run halted") {
		t.Error("view should show the halt")
	}
}

func TestModel_InvalidRequestShowsErrorScreen(t *testing.T) {
	opts := testOptions(reconcile.DryRun{})
	opts.Request.TargetBranch = ""
	m := runToSummary(t, New(opts))

	if m.screen != ScreenError {
		t.Fatalf("screen = %s, want Error", m.screen)
	}
	if !strings.Contains(m.View(), "target branch") {
		t.Error("error view should carry the message")
	}
}

func TestModel_History(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
	if err := store.Add(history.Entry{TargetBranch: "release-0", SourceBranch: "develop", Tickets: []string{"AFE-7"}}); err != nil {
		t.Fatal(err)
	}

	opts := testOptions(reconcile.DryRun{})
	opts.History = store
	m := runToSummary(t, New(opts))

	next, cmd := m.Update(key("h"))
	m = next.(Model)
	if m.screen != ScreenHistory || cmd == nil {
		t.Fatalf("screen = %s, want History with a load command", m.screen)
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if len(m.historyEntries) != 1 || !strings.Contains(m.View(), "release-0") {
		t.Errorf("history entries = %+v", m.historyEntries)
	}

	var copied string
	m.copyFn = func(s string) error { copied = s; return nil }
	next, _ = m.Update(key("c"))
	m = next.(Model)
	if copied != "AFE-7" {
		t.Errorf("copied = %q", copied)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(Model).screen != ScreenSummary {
		t.Error("Esc should return to the summary")
	}
}

func TestModel_TickAndResize(t *testing.T) {
	m := New(testOptions(reconcile.DryRun{}))
	next, cmd := m.Update(tickMsg{})
	m = next.(Model)
	if m.spinnerFrame != 1 || cmd == nil {
		t.Errorf("spinnerFrame = %d", m.spinnerFrame)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	if m.contentWidth() != 112 {
		t.Errorf("contentWidth() = %d", m.contentWidth())
	}
	if !strings.Contains(m.View(), "Preparing") {
		t.Error("loading view should render before any progress")
	}
}

func TestScreenString(t *testing.T) {
	if ScreenHistory.String() != "History" || Screen(99).String() != "Unknown" {
		t.Error("unexpected screen names")
	}
}
