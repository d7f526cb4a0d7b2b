package installer

import (
	"context"

	"devutils/internal/logger"
	"devutils/internal/platform"
	"devutils/internal/shell"
)

// Git installs the git CLI.
var Git = &Installer{
	Name:        "git",
	Description: "Distributed version control",
	Binary:      "git",
	Steps: platform.Table[Step]{
		platform.MacOS:   brewFormula("git"),
		platform.Debian:  aptPackages("git"),
		platform.RHEL:    dnfPackages("git"),
		platform.Windows: windowsPackage("Git.Git", "git"),
	},
}

// Vim installs the Vim editor.
var Vim = &Installer{
	Name:        "vim",
	Description: "Vi IMproved text editor",
	Binary:      "vim",
	Steps: platform.Table[Step]{
		platform.MacOS:   brewFormula("vim"),
		platform.Debian:  aptPackages("vim"),
		platform.RHEL:    dnfPackages("vim-enhanced"),
		platform.Windows: windowsPackage("vim.vim", "vim"),
	},
}

// VLC installs the VLC media player.
var VLC = &Installer{
	Name:        "vlc",
	Description: "VLC media player",
	Binary:      "vlc",
	Check:       caskOrBinary("vlc", "vlc", "VideoLAN.VLC", "vlc"),
	Steps: platform.Table[Step]{
		platform.MacOS:   brewCask("vlc"),
		platform.Debian:  aptPackages("vlc"),
		platform.RHEL:    dnfPackages("vlc"),
		platform.Windows: windowsPackage("VideoLAN.VLC", "vlc"),
	},
}

// YtDlp installs yt-dlp, falling back to pip when the native package fails.
var YtDlp = &Installer{
	Name:        "yt-dlp",
	Aliases:     []string{"ytdlp", "youtube-dl"},
	Description: "Video and audio downloader",
	Binary:      "yt-dlp",
	Steps: platform.Table[Step]{
		platform.MacOS:   withPipFallback(brewFormula("yt-dlp"), "yt-dlp"),
		platform.Debian:  withPipFallback(aptPackages("yt-dlp"), "yt-dlp"),
		platform.RHEL:    withPipFallback(dnfPackages("yt-dlp"), "yt-dlp"),
		platform.Windows: windowsPackage("yt-dlp.yt-dlp", "yt-dlp"),
	},
}

// withPipFallback retries a failed native install with a user-level pip install.
func withPipFallback(native Step, pkg string) Step {
	return func(ctx context.Context, env *Env) error {
		err := native(ctx, env)
		if err == nil {
			return nil
		}
		python := "python3"
		if !env.Runner.Exists(python) {
			return err
		}
		logger.Warn("[WARN] Native install failed (%v); falling back to pip...\n", err)
		return env.Runner.Stream(ctx, python, "-m", "pip", "install", "--user", "--upgrade", pkg).
			Err(shell.Join(python, "-m", "pip", "install", pkg))
	}
}
