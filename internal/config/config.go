package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wahlandcase/attuned.tickets/internal/apperror"
	"github.com/wahlandcase/attuned.tickets/internal/models"
	"github.com/wahlandcase/attuned.tickets/internal/tickets"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Branches BranchesConfig `toml:"branches"`
	Tickets  TicketsConfig  `toml:"tickets"`
	Sources  []SourceConfig `toml:"sources" validate:"required,min=1,dive"`
	GitHub   GitHubConfig   `toml:"github"`
	Output   OutputConfig   `toml:"output"`
	Logging  LoggingConfig  `toml:"logging"`
	Update   UpdateConfig   `toml:"update"`

	// Path the config was loaded from (not serialized)
	path string
}

type BranchesConfig struct {
	// DefaultSource is the --source-branch default; sources with a
	// default_source_branch override only apply it when this is used.
	DefaultSource string `toml:"default_source" validate:"required"`
}

type TicketsConfig struct {
	Prefixes    []string `toml:"prefixes" validate:"required,min=1,dive,required"`
	JiraBaseURL string   `toml:"jira_base_url" validate:"required,url"`
}

type SourceConfig struct {
	Name                string `toml:"name" validate:"required"`
	Path                string `toml:"path" validate:"required_without=Repo"`
	Owner               string `toml:"owner" validate:"required_with=Repo"`
	Repo                string `toml:"repo" validate:"required_with=Owner"`
	DefaultSourceBranch string `toml:"default_source_branch,omitempty"`
}

type GitHubConfig struct {
	APIURL         string `toml:"api_url" validate:"omitempty,url"`
	Token          string `toml:"token,omitempty"`
	AppID          string `toml:"app_id,omitempty" validate:"required_with=PrivateKeyPath"`
	InstallationID string `toml:"installation_id,omitempty" validate:"required_with=AppID"`
	PrivateKeyPath string `toml:"private_key_path,omitempty" validate:"required_with=AppID"`
	// Permissive logs failed comparisons and carries on with an empty commit list
	Permissive bool `toml:"permissive"`
}

type OutputConfig struct {
	ResponseType string `toml:"response_type" validate:"oneof=jira list json yaml"`
	Copy         bool   `toml:"copy"`
}

type LoggingConfig struct {
	Level     string `toml:"level" validate:"oneof=debug info warn error"`
	File      string `toml:"file,omitempty"`
	SentryDSN string `toml:"sentry_dsn,omitempty" validate:"omitempty,url"`
}

type UpdateConfig struct {
	Enabled   bool      `toml:"enabled"`
	LastCheck time.Time `toml:"last_check"`
	Repo      string    `toml:"repo"`
}

// ValidationError lists the config fields that failed validation
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperror.ErrInvalidConfig
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Branches: BranchesConfig{
			DefaultSource: "develop",
		},
		Tickets: TicketsConfig{
			Prefixes:    append([]string(nil), tickets.DefaultPrefixes...),
			JiraBaseURL: "https://swipejobs.atlassian.net",
		},
		Sources: []SourceConfig{
			{Name: "worker app", Path: "./"},
			{Name: "partner resources", Path: "../frontend-partner-resources", DefaultSourceBranch: "worker/merged"},
			{Name: "environment configurations", Path: "../frontend-environment-configurations", DefaultSourceBranch: "worker/merged"},
		},
		GitHub: GitHubConfig{
			APIURL: "https://api.github.com",
		},
		Output: OutputConfig{
			ResponseType: "jira",
			Copy:         true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Update: UpdateConfig{
			Enabled: true,
			Repo:    "wahlandcase/attuned.tickets",
		},
	}
}

// Path returns the default config file location
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "atttix.toml"), nil
}

// Load reads the config at path, or the default location when path is empty.
// A missing default config is created from DefaultConfig.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			cfg := DefaultConfig()
			return cfg, cfg.Validate()
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			cfg := DefaultConfig()
			cfg.path = path
			_ = cfg.Save() // Best effort save
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes TOML over DefaultConfig and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	// Sources from the file replace the defaults rather than merging by index
	cfg.Sources = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidConfig, err)
	}
	if cfg.Sources == nil {
		cfg.Sources = DefaultConfig().Sources
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and returns a *ValidationError on failure
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidConfig, err)
	}

	var fields []string
	for _, fe := range fieldErrs {
		fields = append(fields, formatFieldError(fe))
	}
	return &ValidationError{Fields: fields}
}

func formatFieldError(fe validator.FieldError) string {
	name := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_with", "required_without":
		return name + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "url":
		return name + " must be a valid URL"
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FilePath returns where this config was loaded from, empty for defaults
func (c *Config) FilePath() string {
	return c.path
}

// SetFilePath changes where Save writes
func (c *Config) SetFilePath(path string) {
	c.path = path
}

// ModelSources converts the configured sources, expanding ~ in paths.
// Relative paths are resolved against the working directory at run time.
func (c *Config) ModelSources() []models.Source {
	sources := make([]models.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		src := models.NewSource(s.Name, expandTilde(s.Path)).
			WithRemote(s.Owner, s.Repo).
			WithDefaultSourceBranch(s.DefaultSourceBranch)
		sources = append(sources, src)
	}
	return sources
}

// SelectSources returns the configured sources whose names are in names,
// or all of them when names is empty.
func (c *Config) SelectSources(names []string) ([]models.Source, error) {
	all := c.ModelSources()
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]models.Source, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}

	var selected []models.Source
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: unknown source %q", apperror.ErrInvalidConfig, n)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

// ResponseType returns the parsed output.response_type
func (c *Config) ResponseType() models.ResponseType {
	rt, _ := models.ParseResponseType(c.Output.ResponseType)
	return rt
}

// ShouldCheckForUpdate returns true if update check is enabled and 24h since last check
func (c *Config) ShouldCheckForUpdate() bool {
	if !c.Update.Enabled {
		return false
	}
	return time.Since(c.Update.LastCheck) > 24*time.Hour
}

// RecordUpdateCheck updates the last check time
func (c *Config) RecordUpdateCheck() {
	c.Update.LastCheck = time.Now()
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
