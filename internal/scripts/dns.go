package scripts

import (
	"context"
	"io"

	"devutils/internal/platform"
	"devutils/internal/shell"
)

// ClearDNSCache flushes the resolver cache of the running system.
func ClearDNSCache(ctx context.Context, r shell.Runner, w io.Writer, p platform.Platform) error {
	sudo := func(name string, args ...string) shell.Result {
		if p.NeedsSudo || p.Family == platform.Darwin {
			return r.Stream(ctx, "sudo", append([]string{name}, args...)...)
		}
		return r.Stream(ctx, name, args...)
	}

	linux := func(ctx context.Context) error {
		if r.Exists("resolvectl") {
			return sudo("resolvectl", "flush-caches").Err("resolvectl flush-caches")
		}
		if r.Exists("systemd-resolve") {
			return sudo("systemd-resolve", "--flush-caches").Err("systemd-resolve --flush-caches")
		}
		return requireCommand(r, "resolvectl", "this system does not run systemd-resolved; restart your DNS service instead")
	}

	err := platform.Dispatch(ctx, p, platform.Handlers{
		platform.MacOS: func(ctx context.Context) error {
			if err := sudo("dscacheutil", "-flushcache").Err("dscacheutil -flushcache"); err != nil {
				return err
			}
			return sudo("killall", "-HUP", "mDNSResponder").Err("killall -HUP mDNSResponder")
		},
		platform.Debian: linux,
		platform.RHEL:   linux,
		platform.Windows: func(ctx context.Context) error {
			return r.Stream(ctx, "ipconfig", "/flushdns").Err("ipconfig /flushdns")
		},
	})
	if err != nil {
		return err
	}
	_, _ = io.WriteString(w, "DNS cache cleared.\n")
	return nil
}
