package scripts

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	deverrors "devutils/internal/errors"
	"devutils/internal/shell"
)

const videoOutputTemplate = "%(title)s.%(ext)s"

// GetVideo downloads url with yt-dlp, extracting mp3 audio when audio is set.
func GetVideo(ctx context.Context, r shell.Runner, url string, audio bool) error {
	if strings.TrimSpace(url) == "" {
		return deverrors.NewExitError(errors.Wrap(deverrors.ErrMissingArgument, "url"), "usage: dev get-video <url> [--audio]")
	}
	if err := requireCommand(r, "yt-dlp", "run `dev install yt-dlp`"); err != nil {
		return err
	}

	args := []string{"-o", videoOutputTemplate}
	if audio {
		args = append(args, "-x", "--audio-format", "mp3")
	}
	args = append(args, url)
	return r.Stream(ctx, "yt-dlp", args...).Err("yt-dlp")
}
