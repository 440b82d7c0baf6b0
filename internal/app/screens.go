package app

// Screen represents the current view in the application
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenSummary
	ScreenError
	ScreenHistory
)

func (s Screen) String() string {
	names := []string{
		"Loading",
		"Summary",
		"Error",
		"History",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}
