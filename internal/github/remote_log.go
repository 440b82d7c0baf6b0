package github

import (
	"context"
	"fmt"

	"github.com/wahlandcase/attuned.tickets/internal/apperror"
	"github.com/wahlandcase/attuned.tickets/internal/git"
	"github.com/wahlandcase/attuned.tickets/internal/models"
)

// RemoteLog answers both commit-range queries through the compare API,
// for sources without a usable local clone.
//
// The full range is compare(target...source). The cherry-pick query
// `origin/<target> ^origin/<source>` lists what target has and source lacks,
// which is compare(source...target).
type RemoteLog struct {
	client     *Client
	permissive bool
}

// NewRemoteLog creates a RemoteLog. With permissive set, failed comparisons
// are logged and treated as empty.
func NewRemoteLog(client *Client, permissive bool) *RemoteLog {
	return &RemoteLog{client: client, permissive: permissive}
}

func (r *RemoteLog) FetchCherryPickFiltered(ctx context.Context, src models.Source, targetRef, sourceRef string) ([]string, error) {
	owner, repo, err := remoteOf(src)
	if err != nil {
		return nil, err
	}
	return r.client.CommitMessages(ctx, owner, repo, sourceRef, targetRef, r.permissive)
}

func (r *RemoteLog) FetchFullRange(ctx context.Context, src models.Source, targetRef, sourceRef string) ([]string, error) {
	owner, repo, err := remoteOf(src)
	if err != nil {
		return nil, err
	}
	return r.client.CommitMessages(ctx, owner, repo, targetRef, sourceRef, r.permissive)
}

// remoteOf returns the configured owner/repo, falling back to the origin remote of the local clone
func remoteOf(src models.Source) (string, string, error) {
	if src.HasRemote() {
		return src.Owner, src.Repo, nil
	}
	if src.Path == "" {
		return "", "", fmt.Errorf("%w: source %q has neither owner/repo nor a local path", apperror.ErrInvalidConfig, src.Name)
	}
	owner, repo, err := git.RemoteRepo(src.Path)
	if err != nil {
		return "", "", fmt.Errorf("source %q: %w", src.Name, err)
	}
	return owner, repo, nil
}
