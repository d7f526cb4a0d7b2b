package installer

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"devutils/internal/config"
	"devutils/internal/logger"
	"devutils/internal/state"
)

// SyncOptions tune Sync.
type SyncOptions struct {
	// Concurrency bounds parallel download installs.
	Concurrency int
}

// SyncReport summarizes a Sync run.
type SyncReport struct {
	Installed   []string
	Skipped     []string
	Uninstalled []string
	Failed      []string
	// WouldInstall and WouldRemove are only filled in dry-run mode.
	WouldInstall []string
	WouldRemove  []string
}

// Sync makes the machine match the manifest. Built-in tools are installed
// one at a time because package managers hold a global lock; download tools
// are installed concurrently. Download tools tracked in st but no longer in
// the manifest are uninstalled.
func Sync(ctx context.Context, m *config.Manifest, st *state.State, reg *Registry, env *Env, opts SyncOptions) (SyncReport, error) {
	logger.Debug("[DEBUG] Starting Sync with %d tools, current state has %d entries\n", len(m.Tools), len(st.Names()))

	var (
		report SyncReport
		mu     sync.Mutex
	)
	record := func(list *[]string, name string) {
		mu.Lock()
		defer mu.Unlock()
		*list = append(*list, name)
	}

	desired := make(map[string]bool, len(m.Tools))
	var downloads []config.Tool
	for _, tool := range m.Tools {
		desired[tool.Name] = true
		if tool.IsDownload() {
			downloads = append(downloads, tool)
			continue
		}

		inst, err := reg.Lookup(tool.Name)
		if err != nil {
			logger.Error("[ERROR] %v\n", err)
			record(&report.Failed, tool.Name)
			continue
		}
		toolEnv := *env
		toolEnv.Version = tool.Version
		out, err := Install(ctx, inst, &toolEnv)
		switch {
		case err != nil:
			record(&report.Failed, tool.Name)
		case out.Skipped:
			record(&report.Skipped, tool.Name)
		case env.DryRun:
			record(&report.WouldInstall, tool.Name)
		default:
			record(&report.Installed, tool.Name)
		}
	}

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, tool := range downloads {
		if cur, ok := st.Get(tool.Name); ok && cur.Version == tool.Version && installPresent(cur.InstallPath) && !env.Force {
			logger.Info("[INFO] %s version %s is current. Skipping.\n", tool.Name, tool.Version)
			record(&report.Skipped, tool.Name)
			continue
		}
		g.Go(func() error {
			path, err := InstallDownload(gctx, tool, env)
			if err != nil {
				logger.Error("[ERROR] Failed to install %s@%s: %v\n", tool.Name, tool.Version, err)
				record(&report.Failed, tool.Name)
				return nil
			}
			if env.DryRun {
				record(&report.WouldInstall, tool.Name)
				return nil
			}
			logger.Success("%s@%s installed\n", tool.Name, tool.Version)
			st.Set(tool.Name, state.ToolState{
				Version:        tool.Version,
				InstallPath:    path,
				Source:         tool.Source,
				InstalledByDev: true,
			})
			record(&report.Installed, tool.Name)
			return nil
		})
	}
	// Workers report failures through the report, never through the group.
	_ = g.Wait()

	// Sequential removal to avoid conflicts with state modifications
	for _, name := range st.Names() {
		if desired[name] {
			continue
		}
		ts, _ := st.Get(name)
		if !ts.InstalledByDev {
			// Installed by something else; only forget it.
			logger.Info("[INFO] %s removed from manifest but was not installed by dev. Leaving it in place.\n", name)
			if !env.DryRun {
				st.Delete(name)
			}
			continue
		}
		logger.Warn("[WARN] %s removed from manifest. Uninstalling...\n", name)
		if env.DryRun {
			logger.Plain("[dry-run] uninstall %s\n", name)
			record(&report.WouldRemove, name)
			continue
		}
		if err := Uninstall(ctx, name, ts, env); err != nil {
			logger.Warn("[WARN] Failed to uninstall %s completely: %v\n", name, err)
			record(&report.Failed, name)
			continue
		}
		st.Delete(name)
		record(&report.Uninstalled, name)
	}

	sort.Strings(report.Installed)
	sort.Strings(report.Skipped)
	sort.Strings(report.Uninstalled)
	sort.Strings(report.Failed)
	sort.Strings(report.WouldInstall)
	sort.Strings(report.WouldRemove)
	logger.Debug("[DEBUG] Finished Sync\n")

	if len(report.Failed) > 0 {
		return report, errors.Newf("%d tool(s) failed: %s", len(report.Failed), strings.Join(report.Failed, ", "))
	}
	return report, nil
}

func installPresent(path string) bool {
	if path == "" {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}
