package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"devutils/internal/config"
	deverrors "devutils/internal/errors"
	"devutils/internal/installer"
	"devutils/internal/logger"
	"devutils/internal/state"
)

var syncOpts struct {
	manifest string
	dryRun   bool
	force    bool
}

// syncCmd makes the machine match the tool manifest.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Install, update and remove tools to match the manifest",
	Long: `Read the tool manifest (YAML or TOML) and install every tool it lists.
Tools downloaded from GitHub releases or URLs are tracked in a state file
and uninstalled once they are removed from the manifest.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncOpts.manifest, "manifest", "m", "", "Path to the tool manifest (default from settings)")
	syncCmd.Flags().BoolVar(&syncOpts.dryRun, "dry-run", false, "Print actions instead of performing them")
	syncCmd.Flags().BoolVarP(&syncOpts.force, "force", "f", false, "Reinstall tools that are already present")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a := current
	path := syncOpts.manifest
	if path == "" {
		path = a.settings.Manifest
	}

	m, err := config.LoadManifest(path)
	if err != nil {
		return deverrors.NewExitError(err, "create a manifest or pass --manifest")
	}
	if err := m.Validate(); err != nil {
		return deverrors.NewExitError(err, "fix the manifest and run `dev sync` again")
	}

	st, err := state.Load(a.settings.State)
	if err != nil {
		return deverrors.NewExitError(err, fmt.Sprintf("remove %s to start from an empty state", a.settings.State))
	}

	env := a.installEnv(cmd, syncOpts.dryRun, syncOpts.force)
	report, syncErr := installer.Sync(cmd.Context(), m, st, a.registry, env, installer.SyncOptions{
		Concurrency: a.settings.Concurrency,
	})

	if !syncOpts.dryRun {
		if err := state.Save(a.settings.State, st); err != nil {
			return err
		}
	}
	printReport(cmd, report)
	return syncErr
}

func printReport(cmd *cobra.Command, r installer.SyncReport) {
	out := cmd.OutOrStdout()
	line := func(label string, names []string) {
		if len(names) > 0 {
			fmt.Fprintf(out, "%-15s %s\n", label+":", strings.Join(names, ", "))
		}
	}
	line("installed", r.Installed)
	line("up to date", r.Skipped)
	line("removed", r.Uninstalled)
	line("failed", r.Failed)
	line("would install", r.WouldInstall)
	line("would remove", r.WouldRemove)
	if len(r.Failed) == 0 {
		logger.Success("Sync complete\n")
	}
}
