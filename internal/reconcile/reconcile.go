// Package reconcile runs ticket reconciliation across every configured source.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wahlandcase/attuned.tickets/internal/logging"
	"github.com/wahlandcase/attuned.tickets/internal/models"
	"github.com/wahlandcase/attuned.tickets/internal/tickets"
)

// LogProvider answers the two commit-range queries for a source.
// Implementations: git.Log (local clone), github.RemoteLog (compare API), DryRun.
type LogProvider interface {
	// FetchCherryPickFiltered returns the messages of `origin/<target> ^origin/<source>` with --cherry-pick
	FetchCherryPickFiltered(ctx context.Context, src models.Source, targetRef, sourceRef string) ([]string, error)
	// FetchFullRange returns the messages of origin/<target>..origin/<source>
	FetchFullRange(ctx context.Context, src models.Source, targetRef, sourceRef string) ([]string, error)
}

// ProgressFunc receives a step description before each source is queried.
// With Parallel it is called from several goroutines.
type ProgressFunc func(step string)

// Request describes one reconciliation run
type Request struct {
	TargetBranch    string
	SourceBranch    string
	Sources         []models.Source
	AllowedPrefixes []string
	// Parallel queries all sources at once; output order is unchanged
	Parallel bool
	// KeepGoing records a failing source and continues instead of halting
	KeepGoing bool
}

// Report is the outcome of a run
type Report struct {
	TargetBranch string
	SourceBranch string
	Results      []models.SourceResult
	// Tickets merges the Reconciled results in source order
	Tickets  []string
	Duration time.Duration
}

// Failed returns the results whose queries failed
func (r *Report) Failed() []models.SourceResult {
	var failed []models.SourceResult
	for _, res := range r.Results {
		if models.IsStatusFailed(res.Status) {
			failed = append(failed, res)
		}
	}
	return failed
}

// Service orchestrates a run over a LogProvider
type Service struct {
	provider            LogProvider
	defaultSourceBranch string
	progress            ProgressFunc
}

// NewService creates a Service. defaultSourceBranch is the configured default
// (e.g., "develop") that per-source overrides apply to.
func NewService(provider LogProvider, defaultSourceBranch string) *Service {
	return &Service{
		provider:            provider,
		defaultSourceBranch: defaultSourceBranch,
	}
}

// OnProgress sets the progress callback
func (s *Service) OnProgress(fn ProgressFunc) *Service {
	s.progress = fn
	return s
}

// SourceError ties a collaborator failure to the source it happened in
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Run reconciles every source in req. Without KeepGoing the first failure
// halts the run: the partial report is returned along with a *SourceError
// and the sources that did not run are marked Skipped.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if req.TargetBranch == "" || req.SourceBranch == "" {
		return nil, errors.New("both a target branch and a source branch are required")
	}

	start := time.Now()
	report := &Report{
		TargetBranch: req.TargetBranch,
		SourceBranch: req.SourceBranch,
		Results:      make([]models.SourceResult, len(req.Sources)),
	}

	var err error
	if req.Parallel {
		err = s.runParallel(ctx, req, report.Results)
	} else {
		err = s.runSequential(ctx, req, report.Results)
	}

	var perSource [][]string
	for _, res := range report.Results {
		if models.IsStatusReconciled(res.Status) {
			perSource = append(perSource, res.Tickets)
		}
	}
	report.Tickets = tickets.Aggregate(perSource)
	report.Duration = time.Since(start)

	logging.Info("reconciliation finished",
		"target", req.TargetBranch,
		"source", req.SourceBranch,
		"sources", len(req.Sources),
		"tickets", len(report.Tickets),
		"duration", report.Duration)

	return report, err
}

func (s *Service) runSequential(ctx context.Context, req Request, results []models.SourceResult) error {
	for i, src := range req.Sources {
		results[i] = s.runSource(ctx, src, req)
		if err := results[i].Err; err != nil && !req.KeepGoing {
			skipRemaining(results[i+1:], req, s.defaultSourceBranch, src.Name)
			return &SourceError{Source: src.Name, Err: err}
		}
	}
	return nil
}

func (s *Service) runParallel(ctx context.Context, req Request, results []models.SourceResult) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for i, src := range req.Sources {
		wg.Add(1)
		go func(idx int, src models.Source) {
			defer wg.Done()

			res := s.runSource(ctx, src, req)
			if res.Err != nil && !req.KeepGoing {
				first := false
				once.Do(func() {
					first = true
					firstErr = &SourceError{Source: src.Name, Err: res.Err}
					cancel()
				})
				if !first && errors.Is(res.Err, context.Canceled) {
					// Cut short by the halt
					res.Status = models.Skipped("run halted after " + firstErr.(*SourceError).Source + " failed")
					res.Err = nil
				}
			}
			results[idx] = res
		}(i, src)
	}
	wg.Wait()

	return firstErr
}

// runSource reconciles one source; a failure is carried in the result
func (s *Service) runSource(ctx context.Context, src models.Source, req Request) models.SourceResult {
	sourceRef := src.ResolveSourceBranch(req.SourceBranch, s.defaultSourceBranch)
	result := models.SourceResult{
		Source:       src,
		TargetBranch: req.TargetBranch,
		SourceBranch: sourceRef,
	}

	fail := func(err error) models.SourceResult {
		logging.Warn("source failed", "source", src.Name, "error", err)
		result.Status = models.Failed(err.Error())
		result.Err = err
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if s.progress != nil {
		s.progress("Fetching commits of " + src.Name)
	}

	filtered, err := s.provider.FetchCherryPickFiltered(ctx, src, req.TargetBranch, sourceRef)
	if err != nil {
		return fail(err)
	}
	full, err := s.provider.FetchFullRange(ctx, src, req.TargetBranch, sourceRef)
	if err != nil {
		return fail(err)
	}

	result.Tickets = tickets.Reconcile(full, filtered, req.AllowedPrefixes)
	result.Status = models.Reconciled

	logging.Debug("source reconciled",
		"source", src.Name,
		"target", req.TargetBranch,
		"from", sourceRef,
		"full_range", len(full),
		"filtered", len(filtered),
		"tickets", len(result.Tickets))

	return result
}

func skipRemaining(results []models.SourceResult, req Request, defaultSourceBranch, failed string) {
	offset := len(req.Sources) - len(results)
	for i := range results {
		src := req.Sources[offset+i]
		results[i] = models.SourceResult{
			Source:       src,
			TargetBranch: req.TargetBranch,
			SourceBranch: src.ResolveSourceBranch(req.SourceBranch, defaultSourceBranch),
			Status:       models.Skipped("run halted after " + failed + " failed"),
		}
	}
}
