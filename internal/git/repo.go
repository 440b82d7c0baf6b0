package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wahlandcase/attuned.tickets/internal/apperror"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// openRepo opens the repository containing path, walking up to the .git dir
func openRepo(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &GitError{Command: "open " + path, Output: err.Error()}
	}
	return repo, nil
}

// FetchBranches fetches specified branches from origin using git CLI (to inherit SSH agent)
func FetchBranches(ctx context.Context, runner Runner, repoPath string, branches []string) error {
	args := append([]string{"fetch", "origin"}, branches...)
	_, stderr, err := runner.Run(ctx, repoPath, "git", args...)
	if err != nil {
		outputStr := strings.TrimSpace(string(stderr))
		if strings.Contains(outputStr, "couldn't find remote ref") {
			return &BranchNotFoundError{Branches: missingRefs(outputStr, branches)}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &GitError{Command: "fetch", Output: ctxErr.Error()}
		}
		if outputStr != "" {
			return &GitError{Command: "fetch", Output: outputStr}
		}
		return &GitError{Command: "fetch", Output: "Failed to fetch from remote (check network/auth)"}
	}

	return nil
}

// missingRefs picks the branches git named in "couldn't find remote ref X" lines
func missingRefs(output string, branches []string) []string {
	var missing []string
	for _, b := range branches {
		if strings.Contains(output, "couldn't find remote ref "+b) {
			missing = append(missing, b)
		}
	}
	if len(missing) == 0 {
		return branches
	}
	return missing
}

// resolveRemoteBranch resolves origin/<branch> to a commit hash
func resolveRemoteBranch(repo *git.Repository, branch string) (*plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + branch))
	if err != nil {
		return nil, &BranchNotFoundError{Branches: []string{branch}}
	}
	return hash, nil
}

// RemoteRepo returns the owner and repo of the origin remote
func RemoteRepo(path string) (owner, repo string, err error) {
	r, err := openRepo(path)
	if err != nil {
		return "", "", err
	}

	remote, err := r.Remote("origin")
	if err != nil {
		return "", "", fmt.Errorf("no origin remote in %s: %w", path, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", "", fmt.Errorf("origin remote in %s has no URL", path)
	}

	return ParseRepoFromRemote(urls[0])
}

// ParseRepoFromRemote extracts owner/repo from a git remote URL.
// Supports scp-style SSH (git@host:owner/repo.git) and HTTPS/SSH URLs.
func ParseRepoFromRemote(remoteURL string) (owner, repo string, err error) {
	path := remoteURL
	switch {
	case strings.Contains(remoteURL, "://"):
		path = remoteURL[strings.Index(remoteURL, "://")+3:]
		if i := strings.Index(path, "/"); i >= 0 {
			path = path[i+1:]
		} else {
			path = ""
		}
	case strings.Contains(remoteURL, "@") && strings.Contains(remoteURL, ":"):
		path = remoteURL[strings.Index(remoteURL, ":")+1:]
	default:
		return "", "", fmt.Errorf("unsupported remote URL format: %s", remoteURL)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot extract owner/repo from remote URL: %s", remoteURL)
	}
	return parts[0], parts[1], nil
}

// GitError provides better context for git command failures.
// It marks the source as unreachable.
type GitError struct {
	Command string
	Output  string
}

func (e *GitError) Error() string {
	return "git " + e.Command + ": " + e.Output
}

func (e *GitError) Unwrap() error {
	return apperror.ErrUnreachableSource
}

// BranchNotFoundError indicates a branch was not found on remote
type BranchNotFoundError struct {
	Branches []string
}

func (e *BranchNotFoundError) Error() string {
	return "Branch not found on remote: " + strings.Join(e.Branches, ", ")
}

func (e *BranchNotFoundError) Unwrap() error {
	return apperror.ErrBadReference
}

// IsBranchNotFound reports whether err is a *BranchNotFoundError
func IsBranchNotFound(err error) bool {
	var bnf *BranchNotFoundError
	return errors.As(err, &bnf)
}
