package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/wahlandcase/attuned.tickets/internal/apperror"
	"github.com/wahlandcase/attuned.tickets/internal/logging"
	"github.com/wahlandcase/attuned.tickets/internal/models"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com"

// CheckAuth verifies gh CLI is authenticated
func CheckAuth() error {
	cmd := exec.Command("gh", "auth", "status")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("not authenticated with GitHub CLI. Run 'gh auth login' first")
	}
	return nil
}

// Client calls the GitHub compare API
type Client struct {
	apiURL string
	tokens TokenSource
	http   *http.Client
}

// NewClient creates a client for apiURL (DefaultAPIURL when empty).
// tokens may be nil for unauthenticated access to public repositories.
func NewClient(apiURL string, tokens TokenSource) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		tokens: tokens,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// ComparisonError is returned when the compare API cannot answer
type ComparisonError struct {
	Owner, Repo, Base, Head string
	StatusCode              int    // 0 for transport errors
	Body                    string // truncated response body
	Err                     error
}

func (e *ComparisonError) Error() string {
	target := fmt.Sprintf("%s/%s %s...%s", e.Owner, e.Repo, e.Base, e.Head)
	if e.StatusCode != 0 {
		return fmt.Sprintf("compare %s: github API returned %d: %s", target, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("compare %s: %v", target, e.Err)
}

func (e *ComparisonError) Unwrap() []error {
	if e.Err != nil {
		return []error{apperror.ErrRemoteComparison, e.Err}
	}
	return []error{apperror.ErrRemoteComparison}
}

// Compare returns the commits reachable from head but not from base
func (c *Client) Compare(ctx context.Context, owner, repo, base, head string) (*models.Comparison, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/compare/%s...%s", c.apiURL,
		url.PathEscape(owner), url.PathEscape(repo), escapeRef(base), escapeRef(head))

	fail := func(status int, body string, err error) error {
		return &ComparisonError{Owner: owner, Repo: repo, Base: base, Head: head, StatusCode: status, Body: body, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fail(0, "", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fail(0, "", fmt.Errorf("getting token: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("reading github response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(resp.StatusCode, truncateBytes(body, 500), nil)
	}

	var comparison models.Comparison
	if err := json.Unmarshal(body, &comparison); err != nil {
		return nil, fail(0, "", fmt.Errorf("parsing compare response: %w", err))
	}

	return &comparison, nil
}

// CommitMessages returns the messages of commits in head but not in base.
// Identical refs or an empty comparison give an empty list. With permissive
// set, a failed comparison is logged and also yields an empty list.
func (c *Client) CommitMessages(ctx context.Context, owner, repo, base, head string, permissive bool) ([]string, error) {
	comparison, err := c.Compare(ctx, owner, repo, base, head)
	if err != nil {
		if permissive {
			logging.Warn("comparison failed, continuing without commits",
				"repo", owner+"/"+repo, "base", base, "head", head, "error", err)
			return []string{}, nil
		}
		return nil, err
	}

	messages := comparison.Messages()
	if len(messages) == 0 {
		logging.Info("no commits found in head that are not in base",
			"repo", owner+"/"+repo, "base", base, "head", head, "status", comparison.Status)
	}
	return messages, nil
}

// escapeRef escapes each segment of a branch name, keeping the slashes
func escapeRef(ref string) string {
	parts := strings.Split(ref, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func truncateBytes(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
