package apperror

import "errors"

// Sentinel errors for the collaborator failures a run can hit.
var (
	ErrUnreachableSource = errors.New("unreachable source")
	ErrBadReference      = errors.New("bad reference")
	ErrRemoteComparison  = errors.New("remote comparison failed")
	ErrInvalidConfig     = errors.New("invalid config")
)

// Exit codes returned by the CLI for each failure class.
const (
	ExitOK                = 0
	ExitGeneric           = 1
	ExitBadReference      = 2
	ExitUnreachableSource = 3
	ExitRemoteComparison  = 4
	ExitInvalidConfig     = 5
)

// ExitCode maps an error to the process exit status, defaulting to 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrBadReference):
		return ExitBadReference
	case errors.Is(err, ErrUnreachableSource):
		return ExitUnreachableSource
	case errors.Is(err, ErrRemoteComparison):
		return ExitRemoteComparison
	case errors.Is(err, ErrInvalidConfig):
		return ExitInvalidConfig
	default:
		return ExitGeneric
	}
}

// Kind returns a short label for the failure class, used in reports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadReference):
		return "bad_reference"
	case errors.Is(err, ErrUnreachableSource):
		return "unreachable_source"
	case errors.Is(err, ErrRemoteComparison):
		return "remote_comparison"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	default:
		return "error"
	}
}
