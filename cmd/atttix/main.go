// Command atttix lists the tracker tickets a release branch is missing.
package main

// Must be first import - fixes Warp terminal delay before lipgloss loads
import _ "github.com/wahlandcase/attuned.tickets/internal/termfix"

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/wahlandcase/attuned.tickets/internal/apperror"
	"github.com/wahlandcase/attuned.tickets/internal/logging"
	"github.com/wahlandcase/attuned.tickets/internal/models"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=v1.2.3"
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	logging.Flush(2 * time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(apperror.ExitCode(err))
	}
}

// runOptions holds the root command flags
type runOptions struct {
	configPath   string
	targetBranch string
	sourceBranch string
	responseType string
	sources      []string
	remote       bool
	parallel     bool
	keepGoing    bool
	noFetch      bool
	noCopy       bool
	open         bool
	interactive  bool
	dryRun       bool
	verbose      bool
	noColor      bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "atttix --target-branch <branch>",
		Short: "List the tickets a release branch is missing",
		Long: `atttix compares a release branch with its source branch in every configured
repository, extracts tracker tickets (AFE-1234) from the commit messages, and
prints the tickets that are new to the release. Tickets already cherry-picked
into the release are left out.

Examples:
  atttix --target-branch worker-app-5.1.0-RP6165_RSPP
  atttix --target-branch release-5.2 --response-type list
  atttix --target-branch release-5.2 --remote --response-type json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), opts, cmd.Flags().Changed("source-branch"), stdout, stderr)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: <user config dir>/atttix.toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.targetBranch, "target-branch", "t", "", "Release branch to reconcile (required)")
	flags.StringVarP(&opts.sourceBranch, "source-branch", "s", "", "Branch the release is compared with (default from config, usually develop)")
	flags.StringVarP(&opts.responseType, "response-type", "r", "", responseTypeUsage())
	flags.StringSliceVar(&opts.sources, "source", nil, "Only reconcile the named sources (repeatable)")
	flags.BoolVar(&opts.remote, "remote", false, "Compare through the GitHub API instead of local clones")
	flags.BoolVar(&opts.parallel, "parallel", false, "Query all sources at once")
	flags.BoolVar(&opts.keepGoing, "keep-going", false, "Report failing sources and continue with the rest")
	flags.BoolVar(&opts.noFetch, "no-fetch", false, "Use the existing remote-tracking refs without fetching")
	flags.BoolVar(&opts.noCopy, "no-copy", false, "Do not copy the result to the clipboard")
	flags.BoolVar(&opts.open, "open", false, "Open the JQL search in the browser")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Show the run in an interactive view")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Use fake commits instead of querying repositories")

	rootCmd.AddCommand(
		newHistoryCmd(opts, stdout),
		newConfigCmd(opts, stdout),
		newUpgradeCmd(opts, stdout),
		newVersionCmd(stdout),
	)

	return rootCmd
}

// responseTypeUsage describes each --response-type choice
func responseTypeUsage() string {
	choices := make([]string, 0, len(models.ResponseTypeNames))
	for _, name := range models.ResponseTypeNames {
		rt, _ := models.ParseResponseType(name)
		choices = append(choices, fmt.Sprintf("%s (%s)", name, rt.Display()))
	}
	return "Output: " + strings.Join(choices, ", ") + "; default from config"
}
