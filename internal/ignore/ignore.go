// Package ignore manages technology sections of a .gitignore file.
//
// Each section is delimited by a start and an end marker naming the
// technology, so that dev can find, replace and remove exactly the lines it
// wrote while leaving everything else in the file untouched.
package ignore

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	deverrors "devutils/internal/errors"
)

//go:embed templates/*.txt
var templates embed.FS

const (
	startPrefix = "# >>> dev ignore: "
	endPrefix   = "# <<< dev ignore: "
)

var aliases = map[string]string{
	"golang":     "go",
	"js":         "node",
	"javascript": "node",
	"typescript": "node",
	"ts":         "node",
	"nodejs":     "node",
	"py":         "python",
	"kotlin":     "java",
	"gradle":     "java",
	"maven":      "java",
	"cargo":      "rust",
	"tf":         "terraform",
	"mac":        "macos",
	"osx":        "macos",
	"darwin":     "macos",
	"win":        "windows",
	"idea":       "jetbrains",
	"intellij":   "jetbrains",
	"goland":     "jetbrains",
	"code":       "vscode",
	"vs-code":    "vscode",
}

// Technologies returns the names of every embedded template, sorted.
func Technologies() []string {
	entries, err := fs.ReadDir(templates, "templates")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".txt"); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Normalize folds case and aliases into a template name.
func Normalize(tech string) string {
	t := strings.ToLower(strings.TrimSpace(tech))
	if canonical, ok := aliases[t]; ok {
		return canonical
	}
	return t
}

// Patterns returns the template body for tech.
func Patterns(tech string) (string, error) {
	name := Normalize(tech)
	b, err := templates.ReadFile(path.Join("templates", name+".txt"))
	if err != nil {
		return "", errors.Wrapf(deverrors.ErrUnknownTechnology, "%q (available: %s)", tech, strings.Join(Technologies(), ", "))
	}
	return string(b), nil
}

func startMarker(tech string) string { return startPrefix + tech }

func endMarker(tech string) string { return endPrefix + tech }

// section is the half-open line range [start, end) of a technology block,
// markers included.
type section struct {
	start, end int
}

// splitLines splits content keeping line terminators, so that joining the
// result reproduces content exactly.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.SplitAfter(content, "\n")
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// find locates the section for tech. A start marker without its end marker,
// or an end marker without a start marker, is ErrUnbalancedMarkers.
func find(lines []string, tech string) (section, bool, error) {
	start, end := startMarker(tech), endMarker(tech)
	open := -1
	for i, line := range lines {
		switch strings.TrimSpace(trimEOL(line)) {
		case start:
			if open >= 0 {
				return section{}, false, errors.Wrapf(deverrors.ErrUnbalancedMarkers, "%s: nested start marker on line %d", tech, i+1)
			}
			open = i
		case end:
			if open < 0 {
				return section{}, false, errors.Wrapf(deverrors.ErrUnbalancedMarkers, "%s: end marker on line %d has no start marker", tech, i+1)
			}
			return section{start: open, end: i + 1}, true, nil
		}
	}
	if open >= 0 {
		return section{}, false, errors.Wrapf(deverrors.ErrUnbalancedMarkers, "%s: start marker on line %d is never closed", tech, open+1)
	}
	return section{}, false, nil
}

// HasPatterns reports whether content contains a section for tech.
func HasPatterns(content, tech string) (bool, error) {
	_, ok, err := find(splitLines(content), Normalize(tech))
	return ok, err
}

// block renders the section for tech, terminated by a newline.
func block(tech, body string) string {
	var b strings.Builder
	b.WriteString(startMarker(tech))
	b.WriteString("\n")
	body = strings.TrimRight(body, "\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString(endMarker(tech))
	b.WriteString("\n")
	return b.String()
}

// AddPatterns appends the section for tech to content. An existing section
// is left alone unless force is set, in which case it is replaced in place.
func AddPatterns(content, tech string, force bool) (string, bool, error) {
	name := Normalize(tech)
	body, err := Patterns(name)
	if err != nil {
		return content, false, err
	}
	lines := splitLines(content)
	sec, ok, err := find(lines, name)
	if err != nil {
		return content, false, err
	}
	rendered := block(name, body)

	if ok {
		if !force {
			return content, false, nil
		}
		var b strings.Builder
		for _, l := range lines[:sec.start] {
			b.WriteString(l)
		}
		b.WriteString(rendered)
		for _, l := range lines[sec.end:] {
			b.WriteString(l)
		}
		out := b.String()
		// The last line of the original section may have had no newline.
		if sec.end == len(lines) && !strings.HasSuffix(content, "\n") {
			out = strings.TrimSuffix(out, "\n")
		}
		return out, out != content, nil
	}

	var b strings.Builder
	b.WriteString(content)
	// A blank line separates the section from content that ends in a
	// newline. Content without one only gets its line terminated, so that
	// RemovePatterns can restore it exactly.
	if content != "" {
		b.WriteString("\n")
	}
	b.WriteString(rendered)
	return b.String(), true, nil
}

// RemovePatterns removes the section for tech together with the separator
// AddPatterns put in front of it: the blank line before it, or the line
// terminator of a file that had no final newline.
func RemovePatterns(content, tech string) (string, bool, error) {
	name := Normalize(tech)
	lines := splitLines(content)
	sec, ok, err := find(lines, name)
	if err != nil {
		return content, false, err
	}
	if !ok {
		return content, false, nil
	}

	start := sec.start
	unterminate := false
	if start > 0 {
		if trimEOL(lines[start-1]) == "" {
			start--
		} else if strings.Join(lines[sec.end:], "") == "" {
			unterminate = true
		}
	}
	var b strings.Builder
	for _, l := range lines[:start] {
		b.WriteString(l)
	}
	for _, l := range lines[sec.end:] {
		b.WriteString(l)
	}
	out := b.String()
	if unterminate {
		out = strings.TrimSuffix(out, "\n")
	}
	return out, true, nil
}
