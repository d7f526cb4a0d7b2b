package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Tool sources understood by `dev sync`.
const (
	SourceBuiltin = ""
	SourceGitHub  = "github"
	SourceURL     = "url"
)

// Tool represents a tool entry in the manifest.
//   - Name: registry name for built-in installers, or the binary name.
//   - Version: version to install; for GitHub tools the default tag is "v"+Version.
//   - Source/URL/Repo/Tag: resolve where download tools come from.
type Tool struct {
	Name    string `yaml:"name" toml:"name"`
	Version string `yaml:"version" toml:"version"`
	Source  string `yaml:"source" toml:"source"`
	URL     string `yaml:"url" toml:"url"`
	Repo    string `yaml:"repo" toml:"repo"`
	Tag     string `yaml:"tag" toml:"tag"`
}

// IsDownload reports whether the tool is fetched from GitHub or a URL rather
// than installed by a built-in installer.
func (t Tool) IsDownload() bool {
	return t.Source == SourceGitHub || t.Source == SourceURL
}

// Manifest lists the tools `dev sync` keeps installed.
type Manifest struct {
	Tools []Tool `yaml:"tools" toml:"tools"`
}

// LoadManifest reads a YAML (.yaml/.yml) or TOML (.toml) manifest and
// validates its entries.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(raw, &m)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(raw, &m)
	default:
		return nil, errors.Newf("unsupported manifest format %q (use .yaml or .toml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}

	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid manifest %s", path)
	}
	return &m, nil
}

// Validate checks that every entry is complete and names are unique.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Tools))
	for i, t := range m.Tools {
		if strings.TrimSpace(t.Name) == "" {
			return errors.Newf("tools[%d]: name is required", i)
		}
		key := strings.ToLower(t.Name)
		if seen[key] {
			return errors.Newf("tools[%d]: duplicate tool %q", i, t.Name)
		}
		seen[key] = true

		switch t.Source {
		case SourceBuiltin:
		case SourceGitHub:
			if t.Version == "" && t.Tag == "" {
				return errors.Newf("tools[%d] %s: github tools need a version or tag", i, t.Name)
			}
		case SourceURL:
			if t.URL == "" {
				return errors.Newf("tools[%d] %s: url tools need a url", i, t.Name)
			}
		default:
			return errors.Newf("tools[%d] %s: unknown source %q", i, t.Name, t.Source)
		}
	}
	return nil
}
