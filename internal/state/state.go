package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"devutils/internal/logger"
)

// ToolState represents the saved state of a tool installed by `dev sync`
// from a download source. It records the installed version, where the
// executable was placed, and how it was obtained.
type ToolState struct {
	Version        string `json:"version"`          // Version string of the installed tool
	InstallPath    string `json:"install_path"`     // Absolute path of the installed executable or bundle
	Source         string `json:"source"`           // "github" or "url"
	InstalledByDev bool   `json:"installed_by_dev"` // True if dev placed the files itself
}

// State holds the entire saved state, keyed by tool name.
// It is safe for concurrent use by sync workers.
type State struct {
	mu    sync.Mutex
	Tools map[string]ToolState `json:"tools"`
}

// New returns an empty state.
func New() *State {
	return &State{Tools: make(map[string]ToolState)}
}

// Get returns the state recorded for name.
func (s *State) Get(name string) (ToolState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.Tools[name]
	return ts, ok
}

// Set records the state for name.
func (s *State) Set(name string, ts ToolState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tools[name] = ts
}

// Delete forgets name.
func (s *State) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Tools, name)
}

// Names returns the tracked tool names, sorted.
func (s *State) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.Tools))
	for name := range s.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load loads the saved state from a JSON file at the given path.
// A missing file yields an empty state; a corrupt file is an error so that
// tracked installs are never silently forgotten.
func Load(path string) (*State, error) {
	file, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("[DEBUG] No state file at %s, starting empty\n", path)
		return New(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading state file %s", path)
	}

	st := New()
	if err := json.Unmarshal(file, st); err != nil {
		return nil, errors.Wrapf(err, "parsing state file %s", path)
	}
	// JSON null leaves the map nil
	if st.Tools == nil {
		st.Tools = make(map[string]ToolState)
	}
	return st, nil
}

// Save writes the state as indented JSON, creating the parent directory.
// The file is replaced atomically.
func Save(path string, st *State) error {
	st.mu.Lock()
	file, err := json.MarshalIndent(st, "", "  ")
	st.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "marshalling state")
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating state directory for %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, file, 0o644); err != nil {
		return errors.Wrapf(err, "writing state file %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "replacing state file %s", path)
	}
	return nil
}
