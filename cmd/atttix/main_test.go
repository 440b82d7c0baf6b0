package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wahlandcase/attuned.tickets/internal/apperror"
	"github.com/wahlandcase/attuned.tickets/internal/output"
)

// isolate points the user config dir at a temp dir and writes a config there
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	path := filepath.Join(dir, "atttix.toml")
	cfg := `
[output]
response_type = "jira"
copy = false

[update]
enabled = false
`
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun_DryRunList(t *testing.T) {
	cfgPath := isolate(t)

	stdout, _, err := execute(t, "--config", cfgPath, "--target-branch", "release-1", "--dry-run", "--no-color", "--response-type", "list")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	for _, want := range []string{
		"-> Fetching commits of worker app",
		"-> Fetching commits of partner resources",
		"-> Fetching commits of environment configurations",
		"-> List of tickets: AFE-1234, AFE-1235, RSB-90, SPB-12",
		"-> Number of tickets: 4",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRun_DryRunJSON(t *testing.T) {
	cfgPath := isolate(t)

	stdout, stderr, err := execute(t, "--config", cfgPath, "-t", "release-1", "--dry-run", "-r", "json", "--parallel")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	var doc output.Document
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("stdout is not a JSON document: %v\n%s", err, stdout)
	}
	if doc.Count != 4 || len(doc.Sources) != 3 {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Sources[1].SourceBranch != "worker/merged" {
		t.Errorf("partner resources branch = %q, want worker/merged", doc.Sources[1].SourceBranch)
	}
	if !strings.Contains(stderr, "Fetching commits of") {
		t.Errorf("progress should go to stderr for json:\n%s", stderr)
	}
}

func TestRun_SourceFilter(t *testing.T) {
	cfgPath := isolate(t)

	stdout, _, err := execute(t, "--config", cfgPath, "-t", "release-1", "--dry-run", "-r", "json", "--source", "partner resources", "-s", "hotfix")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	var doc output.Document
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if len(doc.Sources) != 1 || doc.Sources[0].SourceBranch != "hotfix" {
		t.Errorf("sources = %+v", doc.Sources)
	}

	_, _, err = execute(t, "--config", cfgPath, "-t", "release-1", "--dry-run", "--source", "nope")
	if apperror.ExitCode(err) != apperror.ExitInvalidConfig {
		t.Errorf("unknown source error = %v (exit %d)", err, apperror.ExitCode(err))
	}
}

func TestRun_MissingTarget(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "--dry-run")
	if err == nil || !strings.Contains(err.Error(), "Missing --target-branch") {
		t.Fatalf("error = %v", err)
	}
	if apperror.ExitCode(err) != apperror.ExitGeneric {
		t.Errorf("exit code = %d, want 1", apperror.ExitCode(err))
	}
}

func TestRun_InvalidResponseType(t *testing.T) {
	cfgPath := isolate(t)
	_, _, err := execute(t, "--config", cfgPath, "-t", "release-1", "--dry-run", "-r", "csv")
	if !errors.Is(err, apperror.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestRun_MissingConfigFile(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "-t", "release-1", "--dry-run")
	if err == nil || !strings.Contains(err.Error(), "failed to load config") {
		t.Errorf("error = %v", err)
	}
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil || stdout != "atttix dev\n" {
		t.Errorf("version = %q, %v", stdout, err)
	}
}

func TestConfigCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "atttix.toml")

	stdout, _, err := execute(t, "config", "path", "--config", path)
	if err != nil || strings.TrimSpace(stdout) != path {
		t.Errorf("config path = %q, %v", stdout, err)
	}

	if _, _, err := execute(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, _, err := execute(t, "config", "init", "--config", path); err == nil {
		t.Error("second config init without --force should fail")
	}
	if _, _, err := execute(t, "config", "init", "--force", "--config", path); err != nil {
		t.Errorf("config init --force error = %v", err)
	}

	stdout, _, err = execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(stdout, "partner resources") || !strings.Contains(stdout, "default_source") {
		t.Errorf("config show:\n%s", stdout)
	}
}

func TestHistoryCmd(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "history")
	if err != nil || !strings.Contains(stdout, "No runs recorded yet") {
		t.Fatalf("history = %q, %v", stdout, err)
	}

	stdout, _, err = execute(t, "history", "--clear")
	if err != nil || !strings.Contains(stdout, "History cleared") {
		t.Errorf("history --clear = %q, %v", stdout, err)
	}
}

func TestRootCmd_ResponseTypeUsage(t *testing.T) {
	flag := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{}).Flags().Lookup("response-type")
	if flag == nil {
		t.Fatal("--response-type flag not registered")
	}
	for _, want := range []string{"jira (JQL search URL)", "list (ticket list)", "json (JSON report)", "yaml (YAML report)"} {
		if !strings.Contains(flag.Usage, want) {
			t.Errorf("usage %q missing %q", flag.Usage, want)
		}
	}
}
