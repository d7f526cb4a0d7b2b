package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	assert.Empty(t, st.Names())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	st := New()
	st.Set("gh", ToolState{Version: "2.40.0", InstallPath: "/usr/local/bin/gh", Source: "github", InstalledByDev: true})
	st.Set("k9s", ToolState{Version: "0.31.0", InstallPath: "/home/me/bin/k9s", Source: "url", InstalledByDev: true})
	require.NoError(t, Save(path, st))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gh", "k9s"}, loaded.Names())
	gh, ok := loaded.Get("gh")
	require.True(t, ok)
	assert.Equal(t, "/usr/local/bin/gh", gh.InstallPath)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadNullTools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tools": null}`), 0o644))
	st, err := Load(path)
	require.NoError(t, err)
	st.Set("x", ToolState{})
	assert.Equal(t, []string{"x"}, st.Names())
}

func TestDelete(t *testing.T) {
	st := New()
	st.Set("a", ToolState{})
	st.Delete("a")
	_, ok := st.Get("a")
	assert.False(t, ok)
}
