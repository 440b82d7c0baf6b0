// Package update upgrades the atttix binary from GitHub releases through the gh CLI.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/wahlandcase/attuned.tickets/internal/git"

	gover "github.com/hashicorp/go-version"
)

// DefaultRepo hosts the atttix releases
const DefaultRepo = "wahlandcase/attuned.tickets"

// Release represents a GitHub release
type Release struct {
	TagName string `json:"tagName"`
}

// Updater checks for and installs releases
type Updater struct {
	runner git.Runner
	repo   string
	// binaryPath overrides the running executable, for tests
	binaryPath string
}

// New creates an Updater for repo (DefaultRepo when empty)
func New(runner git.Runner, repo string) *Updater {
	if runner == nil {
		runner = git.ExecRunner{}
	}
	if repo == "" {
		repo = DefaultRepo
	}
	return &Updater{runner: runner, repo: repo}
}

// CheckForUpdate queries GitHub releases and returns latest if newer than current
func (u *Updater) CheckForUpdate(ctx context.Context, currentVersion string) (*Release, error) {
	stdout, stderr, err := u.runner.Run(ctx, "", "gh", "release", "list",
		"--repo", u.repo,
		"--json", "tagName",
		"--limit", "1",
	)
	if err != nil {
		return nil, fmt.Errorf("gh release list failed: %s: %w", strings.TrimSpace(string(stderr)), err)
	}

	var releases []Release
	if err := json.Unmarshal(stdout, &releases); err != nil {
		return nil, fmt.Errorf("failed to parse releases: %w", err)
	}

	if len(releases) == 0 {
		return nil, nil
	}

	latest := &releases[0]
	if IsNewer(latest.TagName, currentVersion) {
		return latest, nil
	}
	return nil, nil
}

// IsNewer reports whether tag is a later version than current.
// A "dev" build is older than any release; an unparseable tag never is newer.
func IsNewer(tag, current string) bool {
	currentVer := normalizeVersion(current)
	if currentVer == "dev" || currentVer == "" {
		return true
	}

	latest, err := gover.NewVersion(normalizeVersion(tag))
	if err != nil {
		return false
	}
	installed, err := gover.NewVersion(currentVer)
	if err != nil {
		// Local builds with odd version strings still get offered releases
		return true
	}
	return latest.GreaterThan(installed)
}

// normalizeVersion strips version prefixes for comparison
func normalizeVersion(v string) string {
	v = strings.TrimPrefix(v, "atttix/")
	v = strings.TrimPrefix(v, "v")
	return v
}

// getBinaryPath returns the path to the current executable
func (u *Updater) getBinaryPath() (string, error) {
	if u.binaryPath != "" {
		return u.binaryPath, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	// Resolve symlinks to get actual path
	return filepath.EvalSymlinks(exe)
}

// binaryAssetName returns the expected binary name for the current platform
func binaryAssetName() string {
	return fmt.Sprintf("atttix-%s-%s", runtime.GOOS, runtime.GOARCH)
}

// DownloadAndInstall downloads the binary and replaces the current executable
func (u *Updater) DownloadAndInstall(ctx context.Context, release *Release) error {
	binaryPath, err := u.getBinaryPath()
	if err != nil {
		return fmt.Errorf("failed to get binary path: %w", err)
	}

	tmpPath := filepath.Join(os.TempDir(), "atttix-update")

	// Download using gh CLI
	_, stderr, err := u.runner.Run(ctx, "", "gh", "release", "download",
		release.TagName,
		"--repo", u.repo,
		"--pattern", binaryAssetName(),
		"--output", tmpPath,
		"--clobber",
	)
	if err != nil {
		return fmt.Errorf("download failed: %s", strings.TrimSpace(string(stderr)))
	}

	if err := os.Chmod(tmpPath, 0755); err != nil {
		return fmt.Errorf("chmod failed: %w", err)
	}

	// A release asset below 1KB is an error page, not a binary
	info, err := os.Stat(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to stat downloaded file: %w", err)
	}
	if info.Size() < 1000 {
		return fmt.Errorf("downloaded file too small (%d bytes), likely invalid", info.Size())
	}

	// Atomic replace: rename over the current binary
	if err := os.Rename(tmpPath, binaryPath); err != nil {
		// Cross-device rename, fall back to copy
		return copyFile(tmpPath, binaryPath)
	}

	return nil
}

// copyFile copies src to dst with proper permissions
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	// Create temp file in same directory as dst for atomic replace
	tmpFile, err := os.CreateTemp(filepath.Dir(dst), "atttix-update-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, srcFile); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	tmpFile.Close()

	if err := os.Chmod(tmpPath, 0755); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}

	os.Remove(src)
	return nil
}

// VersionDisplay returns a formatted version string for display
func VersionDisplay(tag string) string {
	return normalizeVersion(tag)
}
