package ignore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deverrors "devutils/internal/errors"
	"devutils/internal/logger"
)

func quiet(t *testing.T) {
	t.Helper()
	t.Cleanup(logger.SetOutput(&bytes.Buffer{}))
}

func TestTechnologies(t *testing.T) {
	assert.Equal(t, []string{
		"docker", "go", "java", "jetbrains", "linux", "macos",
		"node", "python", "rust", "terraform", "vscode", "windows",
	}, Technologies())
}

func TestPatternsAliasesAndUnknown(t *testing.T) {
	body, err := Patterns("Golang")
	require.NoError(t, err)
	assert.Contains(t, body, "*.test")

	_, err = Patterns("cobol")
	assert.True(t, errors.Is(err, deverrors.ErrUnknownTechnology))
}

func TestRoundTripPreservesSurroundingContent(t *testing.T) {
	for _, original := range []string{"# project\nbin/\n*.log\n", "node_modules/", "# project\n\n"} {
		roundTrip(t, original)
	}
}

func TestAddTerminatesLastLineWithoutBlankLine(t *testing.T) {
	added, _, err := AddPatterns("node_modules/", "go", false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(added, "node_modules/\n# >>> dev ignore: go\n"))

	added, _, err = AddPatterns("node_modules/\n", "go", false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(added, "node_modules/\n\n# >>> dev ignore: go\n"))
}

func roundTrip(t *testing.T, original string) {
	t.Helper()
	for _, tech := range Technologies() {
		t.Run(tech, func(t *testing.T) {
			added, changed, err := AddPatterns(original, tech, false)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.True(t, strings.HasPrefix(added, original))

			has, err := HasPatterns(added, tech)
			require.NoError(t, err)
			assert.True(t, has)

			removed, changed, err := RemovePatterns(added, tech)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, original, removed)

			has, err = HasPatterns(removed, tech)
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestAddIsIdempotentWithoutForce(t *testing.T) {
	once, _, err := AddPatterns("", "go", false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(once, "# >>> dev ignore: go\n"))
	assert.True(t, strings.HasSuffix(once, "# <<< dev ignore: go\n"))

	twice, changed, err := AddPatterns(once, "go", false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestForceReplacesSectionInPlace(t *testing.T) {
	content := "top\n# >>> dev ignore: rust\nstale-entry\n# <<< dev ignore: rust\nbottom\n"

	out, changed, err := AddPatterns(content, "rust", true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, strings.HasPrefix(out, "top\n# >>> dev ignore: rust\n"))
	assert.True(t, strings.HasSuffix(out, "# <<< dev ignore: rust\nbottom\n"))
	assert.NotContains(t, out, "stale-entry")
	assert.Contains(t, out, "target/")
}

func TestUnbalancedMarkers(t *testing.T) {
	tests := map[string]string{
		"missing end":   "a\n# >>> dev ignore: go\n*.test\n",
		"missing start": "*.test\n# <<< dev ignore: go\n",
		"nested start":  "# >>> dev ignore: go\n# >>> dev ignore: go\n# <<< dev ignore: go\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := HasPatterns(content, "go")
			assert.True(t, errors.Is(err, deverrors.ErrUnbalancedMarkers))

			out, changed, err := AddPatterns(content, "go", true)
			assert.True(t, errors.Is(err, deverrors.ErrUnbalancedMarkers))
			assert.False(t, changed)
			assert.Equal(t, content, out)

			out, _, err = RemovePatterns(content, "go")
			assert.Error(t, err)
			assert.Equal(t, content, out)
		})
	}
}

func TestOtherSectionsAreIndependent(t *testing.T) {
	content, _, err := AddPatterns("", "go", false)
	require.NoError(t, err)
	content, _, err = AddPatterns(content, "macos", false)
	require.NoError(t, err)

	out, changed, err := RemovePatterns(content, "go")
	require.NoError(t, err)
	assert.True(t, changed)

	has, err := HasPatterns(out, "macos")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = HasPatterns(out, "go")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestApplyWritesFile(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	target := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(target, []byte("secrets.txt\n"), 0o600))

	changed, err := Apply(dir, []string{"go", "vscode"}, Options{})
	require.NoError(t, err)
	assert.True(t, changed)

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	content := string(b)
	assert.True(t, strings.HasPrefix(content, "secrets.txt\n"))
	assert.Contains(t, content, "# >>> dev ignore: go\n")
	assert.Contains(t, content, "# >>> dev ignore: vscode\n")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	changed, err = Apply(dir, []string{"go"}, Options{Remove: true})
	require.NoError(t, err)
	assert.True(t, changed)
	b, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "dev ignore: go")
	assert.Contains(t, string(b), "dev ignore: vscode")
}

func TestApplyDryRunPrintsDiff(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	var out bytes.Buffer

	changed, err := Apply(dir, []string{"terraform"}, Options{DryRun: true, Out: &out})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, out.String(), "+# >>> dev ignore: terraform")
	assert.Contains(t, out.String(), "+*.tfstate")
	assert.NoFileExists(t, filepath.Join(dir, FileName))
}

func TestApplyUnknownTechnologyWritesNothing(t *testing.T) {
	quiet(t)
	dir := t.TempDir()

	_, err := Apply(dir, []string{"go", "cobol"}, Options{})
	assert.True(t, errors.Is(err, deverrors.ErrUnknownTechnology))
	assert.NoFileExists(t, filepath.Join(dir, FileName))
}

func TestApplyLeavesUnbalancedFileUntouched(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	target := filepath.Join(dir, FileName)
	broken := "# >>> dev ignore: go\n*.test\n"
	require.NoError(t, os.WriteFile(target, []byte(broken), 0o644))

	_, err := Apply(dir, []string{"go"}, Options{Force: true})
	assert.True(t, errors.Is(err, deverrors.ErrUnbalancedMarkers))

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, broken, string(b))
}
