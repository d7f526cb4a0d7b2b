package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"devutils/internal/logger"
	"devutils/internal/prompt"
	"devutils/internal/scripts"
)

var gitPushCmd = &cobra.Command{
	Use:   "git-push [message]",
	Short: "Stage everything, commit and push",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := ""
		if len(args) == 1 {
			message = args[0]
		}
		return scripts.GitPush(cmd.Context(), current.runner, cmd.OutOrStdout(), message)
	},
}

var gitPullCmd = &cobra.Command{
	Use:   "git-pull",
	Short: "Pull with rebase, stashing local changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return scripts.GitPull(cmd.Context(), current.runner, cmd.OutOrStdout())
	},
}

var portsPort int

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List listening ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := scripts.ValidatePort(portsPort); err != nil {
			return err
		}
		return scripts.Ports(cmd.Context(), current.runner, cmd.OutOrStdout(), current.platform, portsPort)
	},
}

var localIPAll bool

var localIPCmd = &cobra.Command{
	Use:   "local-ip",
	Short: "Print the local IPv4 address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ifaces, err := current.interfaces()
		if err != nil {
			return err
		}
		return scripts.LocalIP(cmd.OutOrStdout(), ifaces, localIPAll)
	},
}

var isoLocal bool

var isoCmd = &cobra.Command{
	Use:   "iso [time]",
	Short: "Print a time as ISO-8601 with milliseconds",
	Long:  "Print the current time, or the given RFC3339 time or unix seconds, as ISO-8601 (UTC unless --local).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at := ""
		if len(args) == 1 {
			at = args[0]
		}
		return scripts.ISO(cmd.OutOrStdout(), at, isoLocal, current.now)
	},
}

var dpAll bool

var dpCmd = &cobra.Command{
	Use:   "dp",
	Short: "docker ps in a compact table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return scripts.DockerPS(cmd.Context(), current.runner, cmd.OutOrStdout(), dpAll)
	},
}

var dockerCleanYes bool

var dockerCleanCmd = &cobra.Command{
	Use:   "docker-clean",
	Short: "Prune docker containers, images, networks and volumes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var confirm scripts.Confirmer
		if p := current.prompter; p != nil {
			confirm = p.Confirm
		}
		err := scripts.DockerClean(cmd.Context(), current.runner, cmd.OutOrStdout(), dockerCleanYes, confirm)
		if errors.Is(err, prompt.ErrAborted) {
			logger.Warn("[WARN] Cancelled\n")
			return nil
		}
		return err
	},
}

var getVideoAudio bool

var getVideoCmd = &cobra.Command{
	Use:   "get-video <url>",
	Short: "Download a video (or its audio) with yt-dlp",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := ""
		if len(args) == 1 {
			url = args[0]
		}
		return scripts.GetVideo(cmd.Context(), current.runner, url, getVideoAudio)
	},
}

var clearDNSCacheCmd = &cobra.Command{
	Use:   "clear-dns-cache",
	Short: "Flush the DNS resolver cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return scripts.ClearDNSCache(cmd.Context(), current.runner, cmd.OutOrStdout(), current.platform)
	},
}

var aliasesOpts struct {
	shell  string
	dryRun bool
}

var aliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "Add shell aliases for every dev script to your rc file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, added, err := scripts.Aliases(scripts.Names, scripts.AliasOptions{
			Shell:  aliasesOpts.shell,
			DryRun: aliasesOpts.dryRun,
		})
		if err != nil {
			return err
		}
		if len(added) == 0 {
			logger.Info("[INFO] All aliases already present in %s\n", rc)
			return nil
		}
		if aliasesOpts.dryRun {
			for _, line := range added {
				fmt.Fprintf(cmd.OutOrStdout(), "[dry-run] append to %s: %s\n", rc, line)
			}
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d aliases to %s; restart your shell to use them.\n", len(added), rc)
		return nil
	},
}

func init() {
	portsCmd.Flags().IntVarP(&portsPort, "port", "p", 0, "Only show this port")
	localIPCmd.Flags().BoolVarP(&localIPAll, "all", "a", false, "Print every IPv4 address with its interface")
	isoCmd.Flags().BoolVar(&isoLocal, "local", false, "Use the local time zone instead of UTC")
	dpCmd.Flags().BoolVarP(&dpAll, "all", "a", false, "Include stopped containers")
	dockerCleanCmd.Flags().BoolVarP(&dockerCleanYes, "yes", "y", false, "Do not ask for confirmation")
	getVideoCmd.Flags().BoolVar(&getVideoAudio, "audio", false, "Extract audio as mp3")
	aliasesCmd.Flags().StringVar(&aliasesOpts.shell, "shell", "", "Shell rc file to edit: zsh or bash (default from $SHELL)")
	aliasesCmd.Flags().BoolVar(&aliasesOpts.dryRun, "dry-run", false, "Print the lines instead of appending them")

	rootCmd.AddCommand(gitPushCmd, gitPullCmd, portsCmd, localIPCmd, isoCmd, dpCmd,
		dockerCleanCmd, getVideoCmd, clearDNSCacheCmd, aliasesCmd)
}
