package termfix

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	tests := []struct {
		name    string
		noColor bool
		env     map[string]string
	}{
		{name: "flag", noColor: true},
		{name: "not a terminal", env: map[string]string{"CLICOLOR_FORCE": ""}},
		{name: "NO_COLOR", env: map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			var buf bytes.Buffer
			if got := Configure(&buf, tt.noColor); got != termenv.Ascii {
				t.Errorf("Configure() = %v, want Ascii", got)
			}
			if got := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Render("x"); got != "x" {
				t.Errorf("styled output = %q, want plain", got)
			}
		})
	}
}
