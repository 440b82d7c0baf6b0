package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wahlandcase/attuned.tickets/internal/app"
	"github.com/wahlandcase/attuned.tickets/internal/apperror"
	"github.com/wahlandcase/attuned.tickets/internal/config"
	"github.com/wahlandcase/attuned.tickets/internal/git"
	"github.com/wahlandcase/attuned.tickets/internal/github"
	"github.com/wahlandcase/attuned.tickets/internal/history"
	"github.com/wahlandcase/attuned.tickets/internal/logging"
	"github.com/wahlandcase/attuned.tickets/internal/models"
	"github.com/wahlandcase/attuned.tickets/internal/output"
	"github.com/wahlandcase/attuned.tickets/internal/reconcile"
	"github.com/wahlandcase/attuned.tickets/internal/termfix"
	"github.com/wahlandcase/attuned.tickets/internal/update"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// setup loads the config and initializes logging and colors
func setup(opts *runOptions, stdout, stderr io.Writer) (*config.Config, error) {
	termfix.Configure(stdout, opts.noColor)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidConfig, err)
	}
	if opts.verbose {
		level = slog.LevelDebug
	}

	if err := logging.Init(logging.Config{
		Level:     level,
		SentryDSN: cfg.Logging.SentryDSN,
		Version:   version,
		LogFile:   cfg.Logging.File,
		Output:    stderr,
	}); err != nil {
		return nil, fmt.Errorf("failed to init logging: %w", err)
	}

	logging.Debug("config loaded", "path", cfg.FilePath(), "sources", len(cfg.Sources))
	return cfg, nil
}

func runReconcile(ctx context.Context, opts *runOptions, sourceChanged bool, stdout, stderr io.Writer) error {
	if opts.targetBranch == "" || (sourceChanged && opts.sourceBranch == "") {
		var missing []string
		if opts.targetBranch == "" {
			missing = append(missing, "--target-branch")
		}
		if sourceChanged && opts.sourceBranch == "" {
			missing = append(missing, "--source-branch")
		}
		return fmt.Errorf("please provide all the params of this command. Missing %s", strings.Join(missing, ", "))
	}

	cfg, err := setup(opts, stdout, stderr)
	if err != nil {
		return err
	}

	responseType := cfg.ResponseType()
	if opts.responseType != "" {
		responseType, err = models.ParseResponseType(opts.responseType)
		if err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrInvalidConfig, err)
		}
	}

	sourceBranch := opts.sourceBranch
	if sourceBranch == "" {
		sourceBranch = cfg.Branches.DefaultSource
	}

	sources, err := cfg.SelectSources(opts.sources)
	if err != nil {
		return err
	}

	provider, err := buildProvider(opts, cfg)
	if err != nil {
		return err
	}

	req := reconcile.Request{
		TargetBranch:    opts.targetBranch,
		SourceBranch:    sourceBranch,
		Sources:         sources,
		AllowedPrefixes: cfg.Tickets.Prefixes,
		Parallel:        opts.parallel,
		KeepGoing:       opts.keepGoing,
	}

	var report *reconcile.Report
	if opts.interactive {
		report, err = runInteractive(provider, cfg, opts, req)
	} else {
		// Machine-readable output keeps stdout clean
		progressOut := stdout
		if responseType == models.ResponseJSON || responseType == models.ResponseYAML {
			progressOut = stderr
		}
		var mu sync.Mutex
		service := reconcile.NewService(provider, cfg.Branches.DefaultSource).
			OnProgress(func(step string) {
				mu.Lock()
				defer mu.Unlock()
				output.Step(progressOut, step)
			})
		report, err = service.Run(ctx, req)
	}
	if err != nil {
		if report != nil && !opts.interactive {
			reportHalt(stderr, report)
		}
		return err
	}

	if !opts.interactive {
		if _, err := output.Deliver(stdout, report, output.Options{
			ResponseType: responseType,
			JiraBaseURL:  cfg.Tickets.JiraBaseURL,
			Copy:         cfg.Output.Copy && !opts.noCopy,
			Open:         opts.open,
		}); err != nil {
			return err
		}
	}

	recordHistory(report, opts)
	if !opts.dryRun {
		notifyUpdate(ctx, cfg, stderr)
	}
	return nil
}

// reportHalt lists the sources a halted run never reached
func reportHalt(w io.Writer, report *reconcile.Report) {
	for _, res := range report.Results {
		if models.IsStatusSkipped(res.Status) {
			fmt.Fprintf(w, "-> Skipped %s: %s\n", res.Source.Name, models.GetStatusReason(res.Status))
		}
	}
}

// buildProvider picks the LogProvider for the run
func buildProvider(opts *runOptions, cfg *config.Config) (reconcile.LogProvider, error) {
	if opts.dryRun {
		var delay time.Duration
		if opts.interactive {
			delay = 400 * time.Millisecond
		}
		return reconcile.DryRun{Delay: delay}, nil
	}

	if !opts.remote {
		return git.NewLog(git.ExecRunner{}, !opts.noFetch), nil
	}

	tokens := github.NewTokenSource(github.TokenConfig{
		APIURL:         cfg.GitHub.APIURL,
		Token:          cfg.GitHub.Token,
		AppID:          cfg.GitHub.AppID,
		InstallationID: cfg.GitHub.InstallationID,
		PrivateKeyPath: cfg.GitHub.PrivateKeyPath,
	})
	if _, ok := tokens.(*github.GhCLIToken); ok {
		if err := github.CheckAuth(); err != nil {
			return nil, fmt.Errorf("%w: %w", apperror.ErrRemoteComparison, err)
		}
	}

	client := github.NewClient(cfg.GitHub.APIURL, tokens)
	return github.NewRemoteLog(client, cfg.GitHub.Permissive), nil
}

func runInteractive(provider reconcile.LogProvider, cfg *config.Config, opts *runOptions, req reconcile.Request) (*reconcile.Report, error) {
	var store *history.Store
	if path, err := history.DefaultPath(); err == nil {
		store = history.NewStore(path, 0)
	}

	model := app.New(app.Options{
		Provider:            provider,
		DefaultSourceBranch: cfg.Branches.DefaultSource,
		Request:             req,
		JiraBaseURL:         cfg.Tickets.JiraBaseURL,
		DryRun:              opts.dryRun,
		History:             store,
	})

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("error running program: %w", err)
	}

	m := final.(app.Model)
	if m.Report() == nil && m.Err() == nil {
		// Quit before the run finished
		return nil, context.Canceled
	}
	return m.Report(), m.Err()
}

func recordHistory(report *reconcile.Report, opts *runOptions) {
	if opts.dryRun {
		return
	}
	path, err := history.DefaultPath()
	if err != nil {
		logging.Debug("no history path", "error", err)
		return
	}

	entry := history.Entry{
		TargetBranch: report.TargetBranch,
		SourceBranch: report.SourceBranch,
		Tickets:      report.Tickets,
		Remote:       opts.remote,
	}
	for _, res := range report.Results {
		entry.Sources = append(entry.Sources, res.Source.Name)
	}
	for _, res := range report.Failed() {
		entry.Failed = append(entry.Failed, res.Source.Name)
	}

	if err := history.NewStore(path, 0).Add(entry); err != nil {
		logging.Warn("failed to record history", "error", err)
	}
}

// notifyUpdate prints a notice when a newer release exists, at most once a day
func notifyUpdate(ctx context.Context, cfg *config.Config, stderr io.Writer) {
	if !cfg.ShouldCheckForUpdate() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	release, err := update.New(nil, cfg.Update.Repo).CheckForUpdate(ctx, version)
	cfg.RecordUpdateCheck()
	if err := cfg.Save(); err != nil {
		logging.Debug("failed to save update check time", "error", err)
	}
	if err != nil {
		logging.Debug("update check failed", "error", err)
		return
	}
	if release != nil {
		fmt.Fprintf(stderr, "-> atttix %s is available, run `atttix upgrade`\n", update.VersionDisplay(release.TagName))
	}
}

func newHistoryCmd(opts *runOptions, stdout io.Writer) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			termfix.Configure(stdout, opts.noColor)

			path, err := history.DefaultPath()
			if err != nil {
				return err
			}
			store := history.NewStore(path, 0)

			if clear {
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "History cleared")
				return nil
			}

			entries, err := store.Load()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "No runs recorded yet")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %s <- %s  %d tickets",
					e.CreatedAt.Local().Format("2006-01-02 15:04"), e.TargetBranch, e.SourceBranch, len(e.Tickets))
				if len(e.Failed) > 0 {
					line += fmt.Sprintf(" (failed: %s)", strings.Join(e.Failed, ", "))
				}
				fmt.Fprintln(stdout, line)
				if len(e.Tickets) > 0 {
					fmt.Fprintln(stdout, "    "+output.List(e.Tickets))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Delete the recorded history")
	return cmd
}

func newConfigCmd(opts *runOptions, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	resolvePath := func() (string, error) {
		if opts.configPath != "" {
			return opts.configPath, nil
		}
		return config.Path()
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			data, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = stdout.Write(data)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := config.DefaultConfig()
			cfg.SetFilePath(path)
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Fprintln(stdout, "Wrote", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	cmd.AddCommand(pathCmd, showCmd, initCmd)
	return cmd
}

func newUpgradeCmd(opts *runOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Install the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			updater := update.New(nil, cfg.Update.Repo)
			release, err := updater.CheckForUpdate(cmd.Context(), version)
			cfg.RecordUpdateCheck()
			_ = cfg.Save()
			if err != nil {
				return err
			}
			if release == nil {
				fmt.Fprintf(stdout, "atttix %s is up to date\n", version)
				return nil
			}

			fmt.Fprintf(stdout, "Downloading atttix %s...\n", update.VersionDisplay(release.TagName))
			if err := updater.DownloadAndInstall(cmd.Context(), release); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Updated to %s\n", update.VersionDisplay(release.TagName))
			return nil
		},
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "atttix %s\n", update.VersionDisplay(version))
		},
	}
}
