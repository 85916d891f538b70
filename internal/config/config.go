// Package config loads frs-manager settings from an optional YAML file and
// FRS_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Z3rio/frs-manager/internal/install"
	"github.com/Z3rio/frs-manager/internal/release"
	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	AppName   = "frs-manager"
	EnvPrefix = "FRS"

	DefaultTimeout = 5 * time.Minute
)

var ErrInvalid = errors.New("invalid configuration")

type ReleaseConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	UserAgent string        `mapstructure:"user_agent"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type InstallConfig struct {
	// BaseDir overrides the machine-wide program directory.
	BaseDir string `mapstructure:"base_dir"`
	DirName string `mapstructure:"dir_name"`
}

type LogConfig struct {
	// File, when set, receives the same log output as stderr.
	File string `mapstructure:"file"`
}

type Config struct {
	Release ReleaseConfig `mapstructure:"release"`
	Install InstallConfig `mapstructure:"install"`
	Log     LogConfig     `mapstructure:"log"`
	Debug   bool          `mapstructure:"debug"`
	Pause   bool          `mapstructure:"pause"`
}

// Dir returns the directory searched for config.yaml:
// $XDG_CONFIG_HOME/frs-manager (%LOCALAPPDATA%\frs-manager on Windows).
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultLogFile is the log location used when log.file is "default".
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// Load reads the configuration. An explicit path must exist; otherwise a
// missing config file is not an error and defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("release.endpoint", release.DefaultEndpoint)
	v.SetDefault("release.user_agent", release.DefaultUserAgent)
	v.SetDefault("release.token", "")
	v.SetDefault("release.timeout", DefaultTimeout)
	v.SetDefault("install.base_dir", "")
	v.SetDefault("install.dir_name", install.DefaultDirName)
	v.SetDefault("log.file", "")
	v.SetDefault("debug", false)
	v.SetDefault("pause", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config file: %w", ErrInvalid, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Log.File == "default" {
		cfg.Log.File = DefaultLogFile()
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Release.Endpoint) == "" {
		return fmt.Errorf("%w: release.endpoint is empty", ErrInvalid)
	}
	if c.Release.Timeout <= 0 {
		return fmt.Errorf("%w: release.timeout must be positive, got %s", ErrInvalid, c.Release.Timeout)
	}
	if strings.ContainsAny(c.Install.DirName, `/\`) {
		return fmt.Errorf("%w: install.dir_name %q must be a single path element", ErrInvalid, c.Install.DirName)
	}
	return nil
}

// InstallDir resolves the install directory. It does not check that it exists.
func (c *Config) InstallDir() (install.Dir, error) {
	base := c.Install.BaseDir
	if base == "" {
		var err error
		if base, err = install.DefaultBase(); err != nil {
			return install.Dir{}, err
		}
	}
	return install.Locate(base, c.Install.DirName)
}

// ReleaseOptions maps the release settings onto client options.
func (c *Config) ReleaseOptions() release.Options {
	return release.Options{
		Endpoint:  c.Release.Endpoint,
		UserAgent: c.Release.UserAgent,
		Token:     c.Release.Token,
		Timeout:   c.Release.Timeout,
	}
}
