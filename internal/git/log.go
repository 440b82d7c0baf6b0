package git

import (
	"context"
	"sync"

	"github.com/wahlandcase/attuned.tickets/internal/logging"
	"github.com/wahlandcase/attuned.tickets/internal/models"
)

// Log answers commit-range queries from local clones. Branches are fetched
// from origin once per source before the first query.
type Log struct {
	runner Runner
	fetch  bool

	mu      sync.Mutex
	fetched map[string]error
}

// NewLog creates a Log. With fetch=false the existing remote-tracking refs are used as-is.
func NewLog(runner Runner, fetch bool) *Log {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Log{
		runner:  runner,
		fetch:   fetch,
		fetched: make(map[string]error),
	}
}

// FetchCherryPickFiltered returns the commits of the cherry-pick query
// `origin/<target> ^origin/<source>` as oneline messages.
func (l *Log) FetchCherryPickFiltered(ctx context.Context, src models.Source, targetRef, sourceRef string) ([]string, error) {
	if err := l.prepare(ctx, src, targetRef, sourceRef); err != nil {
		return nil, err
	}

	commits, err := GetCherryPickCommits(ctx, l.runner, src.Path, targetRef, sourceRef)
	if err != nil {
		return nil, err
	}
	logging.Debug("cherry-pick log", "source", src.Name, "commits", len(commits))
	return models.OnelineMessages(commits), nil
}

// FetchFullRange returns the commits in origin/<target>..origin/<source> as oneline messages.
func (l *Log) FetchFullRange(ctx context.Context, src models.Source, targetRef, sourceRef string) ([]string, error) {
	if err := l.prepare(ctx, src, targetRef, sourceRef); err != nil {
		return nil, err
	}

	commits, err := GetCommitsBetween(src.Path, targetRef, sourceRef)
	if err != nil {
		return nil, err
	}
	logging.Debug("range log", "source", src.Name, "commits", len(commits))
	return models.OnelineMessages(commits), nil
}

// prepare opens the repo, fetches both branches once, and checks they resolve
func (l *Log) prepare(ctx context.Context, src models.Source, targetRef, sourceRef string) error {
	key := src.Path + "\x00" + targetRef + "\x00" + sourceRef

	l.mu.Lock()
	err, done := l.fetched[key]
	l.mu.Unlock()
	if done {
		return err
	}

	err = l.fetchAndResolve(ctx, src, targetRef, sourceRef)

	l.mu.Lock()
	l.fetched[key] = err
	l.mu.Unlock()
	return err
}

func (l *Log) fetchAndResolve(ctx context.Context, src models.Source, targetRef, sourceRef string) error {
	if _, err := openRepo(src.Path); err != nil {
		return err
	}

	if l.fetch {
		logging.Debug("fetching branches", "source", src.Name, "path", src.Path, "target", targetRef, "from", sourceRef)
		if err := FetchBranches(ctx, l.runner, src.Path, []string{targetRef, sourceRef}); err != nil {
			return err
		}
	}

	// Reopen so refs written by the fetch are picked up
	repo, err := openRepo(src.Path)
	if err != nil {
		return err
	}

	var missing []string
	for _, ref := range []string{targetRef, sourceRef} {
		if _, err := resolveRemoteBranch(repo, ref); err != nil {
			missing = append(missing, ref)
		}
	}
	if len(missing) > 0 {
		return &BranchNotFoundError{Branches: missing}
	}
	return nil
}
