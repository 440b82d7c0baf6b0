package reconcile

import (
	"context"
	"time"

	"github.com/wahlandcase/attuned.tickets/internal/models"
)

// DryRun is a LogProvider returning fake commits, for trying the CLI and UI
// without touching any repository
type DryRun struct {
	// Delay simulates network latency per query
	Delay time.Duration
}

func (d DryRun) FetchCherryPickFiltered(ctx context.Context, src models.Source, targetRef, sourceRef string) ([]string, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return []string{
		"9a8b7c6 AFE-1230 Hotfix payroll rounding",
		"1f2e3d4 RSB-88 Fix translation keys",
	}, nil
}

func (d DryRun) FetchFullRange(ctx context.Context, src models.Source, targetRef, sourceRef string) ([]string, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return []string{
		"abc1234 AFE-1234 Add new dashboard component",
		"def5678 AFE-1235 Resolve authentication bug",
		"ghi9012 chore: Update dependencies",
		"9a8b7c6 AFE-1230 Hotfix payroll rounding",
		"jkl3456 RSB-90 Add shift resources, SPB-12 follow-up",
		"mno7890 OPS-7 Rotate deploy keys",
	}, nil
}

func (d DryRun) wait(ctx context.Context) error {
	if d.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.Delay):
		return nil
	}
}
