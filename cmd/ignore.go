package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	deverrors "devutils/internal/errors"
	"devutils/internal/ignore"
)

var ignoreOpts struct {
	list   bool
	dryRun bool
	force  bool
	remove bool
	dir    string
}

var ignoreCmd = &cobra.Command{
	Use:   "ignore [technology...]",
	Short: "Add technology patterns to .gitignore",
	Long: `Add (or with --remove, remove) a marked section of ignore patterns per
technology to the .gitignore of the target directory. Sections already
present are kept unless --force is given.`,
	Example: `  dev ignore go macos jetbrains
  dev ignore node --dry-run
  dev ignore python --remove`,
	RunE: runIgnore,
}

func init() {
	ignoreCmd.Flags().BoolVarP(&ignoreOpts.list, "list", "l", false, "List available technologies")
	ignoreCmd.Flags().BoolVar(&ignoreOpts.dryRun, "dry-run", false, "Print a diff instead of writing the file")
	ignoreCmd.Flags().BoolVarP(&ignoreOpts.force, "force", "f", false, "Replace sections that already exist")
	ignoreCmd.Flags().BoolVarP(&ignoreOpts.remove, "remove", "r", false, "Remove the sections instead of adding them")
	ignoreCmd.Flags().StringVarP(&ignoreOpts.dir, "dir", "d", ".", "Directory containing the .gitignore")
	rootCmd.AddCommand(ignoreCmd)
}

func runIgnore(cmd *cobra.Command, args []string) error {
	if ignoreOpts.list {
		for _, tech := range ignore.Technologies() {
			fmt.Fprintln(cmd.OutOrStdout(), tech)
		}
		return nil
	}
	if len(args) == 0 {
		return deverrors.NewExitError(errors.Wrap(deverrors.ErrMissingArgument, "technology"),
			"usage: dev ignore <technology>...; run `dev ignore --list` to see the available technologies")
	}

	_, err := ignore.Apply(ignoreOpts.dir, args, ignore.Options{
		DryRun: ignoreOpts.dryRun,
		Force:  ignoreOpts.force,
		Remove: ignoreOpts.remove,
		Out:    cmd.OutOrStdout(),
	})
	switch {
	case errors.Is(err, deverrors.ErrUnknownTechnology):
		return deverrors.NewExitError(err, "run `dev ignore --list` to see the available technologies")
	case errors.Is(err, deverrors.ErrUnbalancedMarkers):
		return deverrors.NewExitError(err, "fix the dev ignore markers in .gitignore by hand; the file was not changed")
	}
	return err
}
