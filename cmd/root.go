package cmd

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"devutils/internal/config"
	deverrors "devutils/internal/errors"
	"devutils/internal/installer"
	"devutils/internal/logger"
	"devutils/internal/platform"
	"devutils/internal/prompt"
	"devutils/internal/scripts"
	"devutils/internal/shell"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath points at an explicit config.yaml. Empty means the default
// search path.
var configPath string

// app holds everything subcommands need. It is built once per invocation in
// PersistentPreRunE.
type app struct {
	settings   *config.Settings
	platform   platform.Platform
	runner     shell.Runner
	prompter   prompt.Prompter // nil when no one can be asked
	releases   installer.ReleaseSource
	downloader installer.Downloader
	registry   *installer.Registry
	now        func() time.Time
	interfaces func() ([]scripts.Interface, error)
}

// current is the app of the running invocation.
var current *app

// setupApp builds the app from settings. Tests replace it with fakes.
var setupApp = func(ctx context.Context, s *config.Settings) (*app, error) {
	a := &app{
		settings:   s,
		platform:   platform.Detect(),
		runner:     shell.New(shell.Options{Timeout: s.Timeout}),
		releases:   installer.NewGitHubReleases(ctx, s.GitHubToken),
		downloader: installer.HTTPDownloader{},
		registry:   installer.Default(),
		now:        time.Now,
		interfaces: scripts.SystemInterfaces,
	}
	if prompt.IsInteractive() {
		a.prompter = prompt.Huh{}
	}
	return a, nil
}

// runnerFor returns the app runner, wrapped to print instead of execute in
// dry-run mode.
func (a *app) runnerFor(cmd *cobra.Command, dryRun bool) shell.Runner {
	if dryRun {
		return shell.DryRun{Next: a.runner, Out: cmd.OutOrStdout()}
	}
	return a.runner
}

// installEnv assembles an installer.Env for one command run.
func (a *app) installEnv(cmd *cobra.Command, dryRun, force bool) *installer.Env {
	return &installer.Env{
		Platform:   a.platform,
		Runner:     a.runnerFor(cmd, dryRun),
		Downloader: a.downloader,
		Releases:   a.releases,
		InstallDir: a.settings.InstallDir,
		Force:      force,
		DryRun:     dryRun,
	}
}

// rootCmd is the base command for the CLI tool `dev`.
var rootCmd = &cobra.Command{
	Use:   "dev",
	Short: "Developer environment bootstrapper",
	Long: `dev installs developer tools with the native package manager of the
machine it runs on and bundles small cross-platform replacements for
common shell aliases.`,
	SilenceErrors: true,
	SilenceUsage:  true,

	// PersistentPreRunE runs before any subcommand: it loads settings,
	// initializes the logger and detects the platform.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(configPath)
		if err != nil {
			return deverrors.NewExitError(err, "check your config.yaml and DEVUTILS_* environment variables")
		}
		logger.Init(debug || settings.Debug)

		a, err := setupApp(cmd.Context(), settings)
		if err != nil {
			return errors.Wrap(err, "initializing")
		}
		current = a
		logger.Debug("[DEBUG] Running on %s\n", a.platform)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml")
}

// Execute runs the CLI and exits with the code matching the outcome: 0 on
// success, 1 on any validation or execution failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("[ERROR] %v\n", err)
		if suggestion := deverrors.SuggestionFor(err); suggestion != "" {
			logger.Warn("[WARN] %s\n", suggestion)
		}
		os.Exit(deverrors.ExitCode(err))
	}
}
