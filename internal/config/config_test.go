package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/wahlandcase/attuned.tickets/internal/apperror"
	"github.com/wahlandcase/attuned.tickets/internal/models"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Branches.DefaultSource != "develop" {
		t.Errorf("DefaultSource = %q, want develop", cfg.Branches.DefaultSource)
	}
	if len(cfg.Sources) != 3 {
		t.Errorf("default sources = %d, want 3", len(cfg.Sources))
	}
	if cfg.ResponseType() != models.ResponseJira {
		t.Errorf("ResponseType() = %v, want jira", cfg.ResponseType())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atttix.toml")
	content := `
[branches]
default_source = "main"

[tickets]
prefixes = ["OPS-"]
jira_base_url = "https://example.atlassian.net"

[[sources]]
name = "api"
path = "~/code/api"

[[sources]]
name = "web"
owner = "acme"
repo = "web"
default_source_branch = "web/merged"

[output]
response_type = "list"
copy = false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.FilePath() != path {
		t.Errorf("FilePath() = %q, want %q", cfg.FilePath(), path)
	}
	if cfg.Branches.DefaultSource != "main" {
		t.Errorf("DefaultSource = %q, want main", cfg.Branches.DefaultSource)
	}
	if !slices.Equal(cfg.Tickets.Prefixes, []string{"OPS-"}) {
		t.Errorf("Prefixes = %q", cfg.Tickets.Prefixes)
	}
	if cfg.ResponseType() != models.ResponseList || cfg.Output.Copy {
		t.Errorf("Output = %+v", cfg.Output)
	}
	// Unset sections keep their defaults
	if cfg.GitHub.APIURL != "https://api.github.com" {
		t.Errorf("APIURL = %q", cfg.GitHub.APIURL)
	}

	sources := cfg.ModelSources()
	if len(sources) != 2 {
		t.Fatalf("sources = %d, want 2 (file replaces defaults)", len(sources))
	}
	if strings.HasPrefix(sources[0].Path, "~") {
		t.Errorf("path not expanded: %q", sources[0].Path)
	}
	if !sources[1].HasRemote() || sources[1].DefaultSourceBranch != "web/merged" {
		t.Errorf("web source = %+v", sources[1])
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		toml  string
		field string
	}{
		{
			name:  "bad response type",
			toml:  "[output]\nresponse_type = \"csv\"\n",
			field: "Output.ResponseType",
		},
		{
			name:  "empty prefixes",
			toml:  "[tickets]\nprefixes = []\njira_base_url = \"https://x.atlassian.net\"\n",
			field: "Tickets.Prefixes",
		},
		{
			name:  "source without path or repo",
			toml:  "[[sources]]\nname = \"orphan\"\n",
			field: "Sources[0].Path",
		},
		{
			name:  "app id without key",
			toml:  "[github]\napp_id = \"123\"\n",
			field: "GitHub.InstallationID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, apperror.ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error %T is not *ValidationError", err)
			}
			if !strings.Contains(vErr.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", vErr.Error(), tt.field)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("[branches\n"))
	if !errors.Is(err, apperror.ErrInvalidConfig) {
		t.Errorf("Parse(malformed) = %v, want ErrInvalidConfig", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "atttix.toml")
	cfg := DefaultConfig()
	cfg.SetFilePath(path)
	cfg.Tickets.Prefixes = []string{"AFE-", "OPS-"}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(loaded.Tickets.Prefixes, cfg.Tickets.Prefixes) {
		t.Errorf("Prefixes = %q, want %q", loaded.Tickets.Prefixes, cfg.Tickets.Prefixes)
	}
	if len(loaded.Sources) != len(cfg.Sources) {
		t.Errorf("Sources = %d, want %d", len(loaded.Sources), len(cfg.Sources))
	}
}

func TestSelectSources(t *testing.T) {
	cfg := DefaultConfig()

	all, err := cfg.SelectSources(nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("SelectSources(nil) = %d, %v", len(all), err)
	}

	picked, err := cfg.SelectSources([]string{"partner resources"})
	if err != nil {
		t.Fatalf("SelectSources: %v", err)
	}
	if len(picked) != 1 || picked[0].DefaultSourceBranch != "worker/merged" {
		t.Errorf("picked = %+v", picked)
	}

	if _, err := cfg.SelectSources([]string{"missing"}); !errors.Is(err, apperror.ErrInvalidConfig) {
		t.Errorf("SelectSources(missing) = %v, want ErrInvalidConfig", err)
	}
}
