// Package config loads gitlet settings from flags, GITLET_* environment
// variables and $XDG_CONFIG_HOME/gitlet/config.yaml, in that order of
// precedence.
package config

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/repo"
)

const (
	EnvPrefix = "GITLET"
	AppName   = "gitlet"
)

// Config is the resolved configuration.
type Config struct {
	Dir         string      `mapstructure:"dir"`
	CacheSize   int         `mapstructure:"cache_size"`
	Compression Compression `mapstructure:"compression"`
	Sync        Sync        `mapstructure:"sync"`
}

type Compression struct {
	Enabled bool `mapstructure:"enabled"`
	Level   int  `mapstructure:"level"`
}

type Sync struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Dir returns the directory searched for config.yaml.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// SetDefaults registers every key so environment overrides are picked up by
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dir", repo.DefaultMetaDir)
	v.SetDefault("cache_size", dag.DefaultCacheSize)
	v.SetDefault("compression.enabled", true)
	v.SetDefault("compression.level", 2)
	v.SetDefault("sync.concurrency", repo.DefaultConcurrency)
}

// Init wires defaults, the environment and the config file into v. An
// explicit file must exist; the default one is optional.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	v.AddConfigPath(Dir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if c.Dir == "" {
		c.Dir = repo.DefaultMetaDir
	}
	if c.Compression.Level < 1 || c.Compression.Level > 3 {
		return nil, fmt.Errorf("compression.level must be 1..3, got %d", c.Compression.Level)
	}
	return &c, nil
}

// RepoOptions translates the configuration into repository options.
func (c *Config) RepoOptions() []repo.Option {
	return []repo.Option{
		repo.WithMetaDir(c.Dir),
		repo.WithCompression(c.Compression.Enabled, c.Compression.Level),
		repo.WithCacheSize(c.CacheSize),
		repo.WithConcurrency(c.Sync.Concurrency),
	}
}
