package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	deverrors "devutils/internal/errors"
	"devutils/internal/installer"
	"devutils/internal/logger"
	"devutils/internal/prompt"
)

var installOpts struct {
	list    bool
	dryRun  bool
	force   bool
	version string
}

var installCmd = &cobra.Command{
	Use:   "install [tool...]",
	Short: "Install developer tools",
	Long: `Install one or more developer tools with the platform's package manager.
Tools that are already installed are skipped unless --force is given.
Without arguments on a terminal, an interactive picker is shown.`,
	Example: `  dev install docker terraform
  dev install --list
  dev install vim --dry-run`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installOpts.list, "list", "l", false, "List available tools")
	installCmd.Flags().BoolVar(&installOpts.dryRun, "dry-run", false, "Print commands instead of running them")
	installCmd.Flags().BoolVarP(&installOpts.force, "force", "f", false, "Reinstall even when already installed")
	installCmd.Flags().StringVar(&installOpts.version, "version", "", "Version to install, for tools that download a pinned release")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	a := current
	if installOpts.list {
		return listTools(cmd, a)
	}

	if len(args) == 0 {
		if a.prompter == nil {
			return deverrors.NewExitError(errors.Wrap(deverrors.ErrMissingArgument, "tool"),
				"usage: dev install <tool>...; run `dev install --list` to see the available tools")
		}
		chosen, err := a.prompter.MultiSelect("Select tools to install", a.registry.Names())
		if errors.Is(err, prompt.ErrAborted) {
			logger.Warn("[WARN] Installation cancelled\n")
			return nil
		}
		if err != nil {
			return err
		}
		args = chosen
	}

	// Resolve every name before installing anything.
	insts := make([]*installer.Installer, 0, len(args))
	for _, name := range args {
		inst, err := a.registry.Lookup(name)
		if err != nil {
			return deverrors.NewExitError(err, "run `dev install --list` to see the available tools")
		}
		insts = append(insts, inst)
	}
	if installOpts.version != "" && len(insts) > 1 {
		return deverrors.NewExitError(errors.New("--version applies to a single tool"), "install the tools separately")
	}

	env := a.installEnv(cmd, installOpts.dryRun, installOpts.force)
	env.Version = installOpts.version

	var failed []string
	for _, inst := range insts {
		// Install logs its own failures; keep going with the remaining tools.
		if _, err := installer.Install(cmd.Context(), inst, env); err != nil {
			failed = append(failed, inst.Name)
		}
	}
	if len(failed) > 0 {
		return errors.Newf("failed to install: %s", strings.Join(failed, ", "))
	}
	return nil
}

func listTools(cmd *cobra.Command, a *app) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tALIASES\tPLATFORMS\tDESCRIPTION")
	for _, inst := range a.registry.All() {
		aliases := strings.Join(inst.Aliases, ", ")
		if aliases == "" {
			aliases = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inst.Name, aliases, strings.Join(inst.Platforms(), ", "), inst.Description)
	}
	return tw.Flush()
}
