// Package termfix sets environment variables to fix Warp terminal delays.
// Import this package FIRST (before any lipgloss/termenv imports) using:
//
//	_ "github.com/wahlandcase/attuned.tickets/internal/termfix"
package termfix

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	if os.Getenv("TERM_PROGRAM") == "WarpTerminal" {
		os.Setenv("TERM", "dumb")
		os.Setenv("COLORTERM", "truecolor")
	}
}

// Configure sets the lipgloss color profile for out. Colors are dropped when
// noColor is set, NO_COLOR is present, or out is not a terminal, so piped
// output (e.g., `atttix ... | pbcopy`) carries no escape codes.
func Configure(out io.Writer, noColor bool) termenv.Profile {
	profile := termenv.NewOutput(out).EnvColorProfile()
	if noColor {
		profile = termenv.Ascii
	}
	lipgloss.SetColorProfile(profile)
	return profile
}
