package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
		kind string
	}{
		{nil, ExitOK, ""},
		{errors.New("boom"), ExitGeneric, "error"},
		{fmt.Errorf("worker app: %w", ErrBadReference), ExitBadReference, "bad_reference"},
		{fmt.Errorf("fetch: %w", ErrUnreachableSource), ExitUnreachableSource, "unreachable_source"},
		{fmt.Errorf("compare: %w", ErrRemoteComparison), ExitRemoteComparison, "remote_comparison"},
		{fmt.Errorf("load: %w", ErrInvalidConfig), ExitInvalidConfig, "invalid_config"},
	}

	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
		if got := Kind(tt.err); got != tt.kind {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.kind)
		}
	}
}
