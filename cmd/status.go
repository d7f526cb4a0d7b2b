package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"devutils/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tools are installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		env := a.installEnv(cmd, false, false)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Platform:\t%s\n\n", a.platform)
		fmt.Fprintln(tw, "TOOL\tINSTALLED\tSUPPORTED")
		for _, inst := range a.registry.All() {
			_, supported := inst.Steps.Lookup(a.platform)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", inst.Name, yesNo(inst.Installed(cmd.Context(), env)), yesNo(supported))
		}

		st, err := state.Load(a.settings.State)
		if err != nil {
			return err
		}
		if names := st.Names(); len(names) > 0 {
			fmt.Fprintln(tw, "\nDOWNLOADED\tVERSION\tPATH")
			for _, name := range names {
				ts, _ := st.Get(name)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, ts.Version, ts.InstallPath)
			}
		}
		return tw.Flush()
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
