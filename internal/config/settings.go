// Package config loads the dev CLI settings and the tool manifest used by
// `dev sync`.
package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// AppName names the configuration and state directories.
const AppName = "devutils"

// Defaults for settings not present in the config file or environment.
const (
	DefaultTimeout     = 10 * time.Minute
	DefaultConcurrency = 4
)

// Settings holds the resolved CLI configuration.
type Settings struct {
	Debug       bool
	Timeout     time.Duration
	Manifest    string
	State       string
	InstallDir  string
	Concurrency int
	GitHubToken string
}

// ConfigDir returns $XDG_CONFIG_HOME/devutils.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// StateDir returns $XDG_STATE_HOME/devutils.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// LoadSettings reads config.yaml from path, or when path is empty from the
// current directory and ConfigDir. A missing implicit config file is not an
// error. DEVUTILS_* environment variables override file values.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(ConfigDir())

	v.SetEnvPrefix("DEVUTILS")
	v.AutomaticEnv()

	v.SetDefault("debug", false)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("manifest", filepath.Join(ConfigDir(), "tools.yaml"))
	v.SetDefault("state", filepath.Join(StateDir(), "state.json"))
	v.SetDefault("install_dir", "")
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("github_token", "")

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, errors.Wrapf(err, "expanding config path %s", path)
		}
		v.SetConfigFile(expanded)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	s := &Settings{
		Debug:       v.GetBool("debug"),
		Timeout:     v.GetDuration("timeout"),
		Concurrency: v.GetInt("concurrency"),
		GitHubToken: v.GetString("github_token"),
	}
	if s.Timeout < 0 {
		return nil, errors.Newf("timeout must not be negative, got %s", s.Timeout)
	}
	if s.Concurrency < 1 {
		s.Concurrency = 1
	}

	var err error
	if s.Manifest, err = homedir.Expand(v.GetString("manifest")); err != nil {
		return nil, errors.Wrap(err, "expanding manifest path")
	}
	if s.State, err = homedir.Expand(v.GetString("state")); err != nil {
		return nil, errors.Wrap(err, "expanding state path")
	}
	if s.InstallDir, err = homedir.Expand(v.GetString("install_dir")); err != nil {
		return nil, errors.Wrap(err, "expanding install_dir")
	}
	return s, nil
}
