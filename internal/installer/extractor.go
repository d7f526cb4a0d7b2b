package installer

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/cockroachdb/errors"
	"github.com/xi2/xz" // For reading .xz compressed data

	"devutils/internal/logger"
	"devutils/internal/shell"
)

var archiveExtensions = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".tar", ".zip", ".7z"}

// IsArchive reports whether path has an extension ExtractArchive handles.
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ExtractAndInstall extracts an archive and installs the executables named
// after toolName into the install directory. It returns the installed path
// of the first executable. r runs `file` for entries without an exec bit.
func ExtractAndInstall(ctx context.Context, r shell.Runner, src, dest, toolName, installDir string) (string, error) {
	if err := ExtractArchive(src, dest); err != nil {
		return "", err
	}

	if toolName == "" {
		toolName = extractToolNameFromPath(src)
	}

	binaries, err := findExecutables(ctx, r, dest, toolName)
	if err != nil {
		return "", errors.Wrapf(err, "no %s binary found in %s", toolName, filepath.Base(src))
	}
	return installBinaries(binaries, installDir)
}

// installBinaries copies binaries into installDir. With no installDir it
// tries /usr/local/bin and falls back to $HOME/bin.
func installBinaries(binaries []string, installDir string) (string, error) {
	candidates := []string{installDir}
	if installDir == "" {
		candidates = []string{"/usr/local/bin", filepath.Join(os.Getenv("HOME"), "bin")}
	}

	var lastErr error
	for _, destination := range candidates {
		if err := os.MkdirAll(destination, 0o755); err != nil {
			lastErr = errors.Wrapf(err, "cannot create bin directory %s", destination)
			continue
		}
		lastErr = nil
		for _, binaryPath := range binaries {
			if err := copyBinary(binaryPath, destination); err != nil {
				lastErr = errors.Wrapf(err, "failed to copy %s to %s", filepath.Base(binaryPath), destination)
				break
			}
		}
		if lastErr == nil {
			finalPath := filepath.Join(destination, filepath.Base(binaries[0]))
			logger.Info("[INFO] Installed %s\n", finalPath)
			return finalPath, nil
		}
		logger.Debug("[DEBUG] %v\n", lastErr)
	}
	return "", lastErr
}

// extractToolNameFromPath attempts to derive a reasonable tool name from a given archive path
func extractToolNameFromPath(path string) string {
	filename := filepath.Base(path)

	for _, ext := range archiveExtensions {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			filename = filename[:len(filename)-len(ext)]
			break
		}
	}

	// Split on delimiters like "-" or "_" and return the first part
	parts := strings.FieldsFunc(filename, func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(parts) > 0 {
		return parts[0]
	}
	return filename
}

// ExtractArchive routes to the extraction function for the archive type.
func ExtractArchive(src, dest string) error {
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		logger.Debug("[DEBUG] compression type is zip\n")
		return extractZip(src, dest)
	case strings.HasSuffix(lower, ".7z"):
		logger.Debug("[DEBUG] compression type is .7z\n")
		return extract7z(src, dest)
	case strings.HasSuffix(lower, ".tar"), strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tar.xz"):
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		return extractTarArchive(src, dest)
	default:
		return errors.Newf("unsupported archive format: %s", filepath.Base(src))
	}
}

// safeJoin joins name under dest, rejecting entries that would escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.Newf("archive entry %q escapes the extraction directory", name)
	}
	return target, nil
}

// writeEntry copies r into target, creating parent directories.
func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if mode == 0 {
		mode = 0o644
	}
	outFile, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, r); err != nil {
		_ = outFile.Close()
		return err
	}
	return outFile.Close()
}

// extractTarArchive handles tar and compressed tar variants
func extractTarArchive(src, dest string) error {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, dest)
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(lower, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		default:
			logger.Debug("[DEBUG] Skipping tar entry %s (type %c)\n", hdr.Name, hdr.Typeflag)
		}
	}
}

// extractZip extracts a .zip archive
func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeEntry(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extract7z handles .7z extraction using the sevenzip library
func extract7z(src, dest string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return errors.Wrap(err, "failed to open 7z archive")
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeEntry(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// findExecutables scans a directory tree and returns all executable files matching the tool name
func findExecutables(ctx context.Context, r shell.Runner, root string, toolName string) ([]string, error) {
	logger.Debug("[DEBUG] Scanning directory for executables: %s\n", root)
	var executables []string
	r = shell.Unwrap(r)
	hasFile := r.Exists("file")

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		filename := filepath.Base(path)
		if !strings.HasPrefix(strings.ToLower(filename), strings.ToLower(toolName)) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logger.Debug("[DEBUG] Failed to get file info for %s: %v\n", path, err)
			return nil
		}
		mode := info.Mode()
		if !mode.IsRegular() {
			return nil
		}

		if mode.Perm()&0o111 != 0 || strings.HasSuffix(strings.ToLower(filename), ".exe") {
			logger.Debug("[DEBUG] Found executable (perm): %s\n", path)
			executables = append(executables, path)
			return nil
		}

		// Fallback: use `file` command to determine if it's executable
		if !hasFile {
			return nil
		}
		res := r.Run(ctx, "file", "--brief", path)
		if !res.OK() {
			return nil
		}
		output := strings.ToLower(res.Stdout)
		if strings.Contains(output, "executable") || strings.Contains(output, "mach-o") || strings.Contains(output, "elf") {
			logger.Debug("[DEBUG] Found executable via file command: %s\n", path)
			executables = append(executables, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(executables) == 0 {
		return nil, errors.Newf("no executables found in %s", root)
	}
	return executables, nil
}

// copyBinary copies a file to a target directory with executable permissions
func copyBinary(src, dstDir string) error {
	dst := filepath.Join(dstDir, filepath.Base(src))
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// Write next to the destination and rename so a running binary is never truncated.
	tmp := dst + ".dev-tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
