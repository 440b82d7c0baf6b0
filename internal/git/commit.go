package git

import (
	"context"
	"strings"

	"github.com/wahlandcase/attuned.tickets/internal/models"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// onelineFormat mirrors `git log --oneline` with a tab between hash and subject
const onelineFormat = "--format=%h%x09%s"

// GetCommitsBetween gets commits between two branches (base..head)
// Returns commits that are in head but not in base
func GetCommitsBetween(repoPath, baseBranch, headBranch string) ([]models.CommitInfo, error) {
	repo, err := openRepo(repoPath)
	if err != nil {
		return nil, err
	}

	baseHash, err := resolveRemoteBranch(repo, baseBranch)
	if err != nil {
		return nil, err
	}
	headHash, err := resolveRemoteBranch(repo, headBranch)
	if err != nil {
		return nil, err
	}

	// Build set of commits reachable from base
	baseCommits := make(map[plumbing.Hash]bool)
	baseIter, err := repo.Log(&git.LogOptions{From: *baseHash})
	if err != nil {
		return nil, &GitError{Command: "log " + baseBranch, Output: err.Error()}
	}
	err = baseIter.ForEach(func(c *object.Commit) error {
		baseCommits[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, &GitError{Command: "log " + baseBranch, Output: err.Error()}
	}

	headIter, err := repo.Log(&git.LogOptions{From: *headHash})
	if err != nil {
		return nil, &GitError{Command: "log " + headBranch, Output: err.Error()}
	}

	var commits []models.CommitInfo
	seen := make(map[plumbing.Hash]bool)
	err = headIter.ForEach(func(c *object.Commit) error {
		// Don't stop at the first base commit: merge commits have multiple
		// parents and every path has to be walked.
		if seen[c.Hash] || baseCommits[c.Hash] {
			return nil
		}
		seen[c.Hash] = true

		hash := c.Hash.String()[:7]
		subject := strings.Split(c.Message, "\n")[0]
		commits = append(commits, models.NewCommitInfo(hash, subject))
		return nil
	})
	if err != nil {
		return nil, &GitError{Command: "log " + baseBranch + ".." + headBranch, Output: err.Error()}
	}

	return commits, nil
}

// GetCherryPickCommits runs `git log --cherry-pick origin/<target> ^origin/<source>`
// and returns the listed commits. git drops commits whose patch is already
// present on the other side of the range.
func GetCherryPickCommits(ctx context.Context, runner Runner, repoPath, targetBranch, sourceBranch string) ([]models.CommitInfo, error) {
	stdout, stderr, err := runner.Run(ctx, repoPath, "git", "log", "--cherry-pick", onelineFormat,
		"origin/"+targetBranch,
		"^origin/"+sourceBranch,
		"--",
	)
	if err != nil {
		output := strings.TrimSpace(string(stderr))
		if strings.Contains(output, "unknown revision") || strings.Contains(output, "bad revision") {
			return nil, &BranchNotFoundError{Branches: []string{targetBranch, sourceBranch}}
		}
		if output == "" {
			output = err.Error()
		}
		return nil, &GitError{Command: "log --cherry-pick", Output: output}
	}

	return parseOnelineLog(string(stdout)), nil
}

// parseOnelineLog parses "<hash>\t<subject>" lines, skipping blanks
func parseOnelineLog(output string) []models.CommitInfo {
	var commits []models.CommitInfo
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		hash, subject, found := strings.Cut(line, "\t")
		if !found {
			// Plain --oneline output uses a space
			hash, subject, _ = strings.Cut(line, " ")
		}
		commits = append(commits, models.NewCommitInfo(hash, subject))
	}
	return commits
}
