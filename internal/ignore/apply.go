package ignore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
)

// FileName is the file Apply edits inside the target directory.
const FileName = ".gitignore"

// Options control Apply.
type Options struct {
	DryRun bool
	Force  bool
	Remove bool
	// Out receives the diff preview in dry-run mode.
	Out io.Writer
}

// Apply adds (or, with Remove, removes) the sections for techs in
// dir/.gitignore. Every technology is validated before the file is read, and
// the file is written once, atomically, after all of them were applied. It
// reports whether the content changed.
func Apply(dir string, techs []string, opts Options) (bool, error) {
	if len(techs) == 0 {
		return false, errors.New("no technologies given")
	}
	if !opts.Remove {
		for _, tech := range techs {
			if _, err := Patterns(tech); err != nil {
				return false, err
			}
		}
	}

	target := filepath.Join(dir, FileName)
	original, perm, err := readGitignore(target)
	if err != nil {
		return false, err
	}

	content := original
	for _, tech := range techs {
		name := Normalize(tech)
		var changed bool
		if opts.Remove {
			content, changed, err = RemovePatterns(content, name)
		} else {
			content, changed, err = AddPatterns(content, name, opts.Force)
		}
		if err != nil {
			return false, errors.Wrapf(err, "updating %s", target)
		}
		report(name, changed, opts)
	}

	if content == original {
		logger.Info("[INFO] %s is already up to date\n", target)
		return false, nil
	}

	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		_, _ = io.WriteString(out, udiff.Unified(target, target, original, content))
		return true, nil
	}

	if err := writeAtomic(target, []byte(content), perm); err != nil {
		return false, err
	}
	logger.Success("Updated %s\n", target)
	return true, nil
}

func report(tech string, changed bool, opts Options) {
	switch {
	case opts.Remove && changed:
		logger.Info("[INFO] Removed %s patterns\n", tech)
	case opts.Remove:
		logger.Warn("[WARN] No %s section found\n", tech)
	case changed:
		logger.Info("[INFO] Added %s patterns\n", tech)
	default:
		logger.Warn("[WARN] %s patterns already present (use --force to replace them)\n", tech)
	}
}

// readGitignore returns the file content and mode. A missing file reads as
// empty.
func readGitignore(path string) (string, os.FileMode, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", 0o644, nil
	}
	if err != nil {
		return "", 0, errors.Wrapf(err, "reading %s", path)
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return string(b), perm, nil
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmpName)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return errors.Wrapf(err, "chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}
