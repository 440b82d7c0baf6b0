package output

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/wahlandcase/attuned.tickets/internal/logging"
	"github.com/wahlandcase/attuned.tickets/internal/models"
	"github.com/wahlandcase/attuned.tickets/internal/reconcile"
	"github.com/wahlandcase/attuned.tickets/internal/ui"
)

var (
	writeClipboard = clipboard.WriteAll
	startCommand   = func(cmd *exec.Cmd) error { return cmd.Start() }
	detectWSL      = isWSL
)

var (
	stepStyle  = lipgloss.NewStyle().Foreground(ui.ColorBlue)
	labelStyle = lipgloss.NewStyle().Foreground(ui.ColorBlue)
	errorStyle = lipgloss.NewStyle().Foreground(ui.ColorRed)
)

// Copy puts text on the system clipboard
func Copy(text string) error {
	if detectWSL() {
		// WSL: use clip.exe to reach Windows clipboard
		cmd := exec.Command("clip.exe")
		cmd.Stdin = strings.NewReader(text)
		return cmd.Run()
	}
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}

// OpenURL opens a URL in the default browser
func OpenURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default: // Linux and others
		if detectWSL() {
			cmd = exec.Command("cmd.exe", "/c", "start", url)
		} else {
			cmd = exec.Command("xdg-open", url)
		}
	}

	return startCommand(cmd)
}

// isWSL checks if running under Windows Subsystem for Linux
func isWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// Step prints a progress line: "-> Fetching commits of worker app"
func Step(w io.Writer, step string) {
	fmt.Fprintf(w, "-> %s\n", stepStyle.Render(step))
}

// Summary prints the merged ticket list and its size
func Summary(w io.Writer, tickets []string) {
	fmt.Fprintf(w, "-> %s%s\n", labelStyle.Render("List of tickets: "), strings.Join(tickets, ", "))
	fmt.Fprintf(w, "-> %s%d\n", labelStyle.Render("Number of tickets: "), len(tickets))
}

// Failures prints one line per failed source
func Failures(w io.Writer, results []FailedSource) {
	for _, f := range results {
		fmt.Fprintf(w, "-> %s %s\n", errorStyle.Render("Failed "+f.Name+":"), f.Reason)
	}
}

// FailedSource names a source left out of the merged list
type FailedSource struct {
	Name   string
	Reason string
}

// Options controls Deliver
type Options struct {
	ResponseType models.ResponseType
	JiraBaseURL  string
	// Copy puts the formatted response on the clipboard
	Copy bool
	// Open opens the JQL search in the browser
	Open bool
}

// Deliver renders the report and hands it to the user. jira and list print
// the console summary; json and yaml print the document itself so it can be
// piped. Clipboard and browser failures are reported but do not fail the run.
func Deliver(w io.Writer, report *reconcile.Report, opts Options) (string, error) {
	response, err := Format(opts.ResponseType, report, opts.JiraBaseURL)
	if err != nil {
		return "", err
	}

	switch opts.ResponseType {
	case models.ResponseJSON, models.ResponseYAML:
		fmt.Fprintln(w, response)
	default:
		var failed []FailedSource
		for _, res := range report.Failed() {
			failed = append(failed, FailedSource{Name: res.Source.Name, Reason: models.GetStatusReason(res.Status)})
		}
		Failures(w, failed)
		Summary(w, report.Tickets)
	}

	if opts.Copy {
		if err := Copy(response); err != nil {
			logging.Warn("clipboard copy failed", "error", err)
			fmt.Fprintf(w, "-> %s\n", errorStyle.Render("Could not copy to clipboard: "+err.Error()))
		} else {
			logging.Debug("copied response to clipboard", "type", opts.ResponseType.String())
		}
	}

	if opts.Open && len(report.Tickets) > 0 {
		if err := OpenURL(JiraURL(opts.JiraBaseURL, report.Tickets)); err != nil {
			logging.Warn("opening browser failed", "error", err)
			fmt.Fprintf(w, "-> %s\n", errorStyle.Render("Could not open browser: "+err.Error()))
		}
	}

	return response, nil
}
