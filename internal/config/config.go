// Package config reads tool configuration from arcx.yaml, the environment
// (ARCX_*), or built-in defaults, in flag-overridable form.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"arcx/pkg/asset"
	"arcx/pkg/codec"
)

// Config carries the tool-wide settings. Values come from a config file,
// environment variables, or defaults; command-line flags override all three.
type Config struct {
	Workers int            `mapstructure:"workers"`
	Codec   string         `mapstructure:"codec"`
	Verbose bool           `mapstructure:"verbose"`
	Levels  map[string]int `mapstructure:"levels"`
}

const defaultWorkers = 4

// Load reads configuration. With an explicit path the file must exist;
// otherwise arcx.yaml is searched in the working directory and
// ~/.config/arcx/, and its absence is fine.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("arcx")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "arcx"))
		}
	}

	v.SetEnvPrefix("ARCX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("workers", defaultWorkers)
	v.SetDefault("codec", codec.DefaultName)
	v.SetDefault("verbose", false)
	defaults := asset.DefaultPolicy()
	for _, category := range asset.Categories() {
		v.SetDefault("levels."+category.String(), defaults.Resolve(category))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Policy materializes the configured per-category levels.
func (c *Config) Policy() (asset.Policy, error) {
	overrides := make(map[asset.Category]int, len(c.Levels))
	for name, level := range c.Levels {
		category, err := asset.ParseCategory(name)
		if err != nil {
			return asset.Policy{}, fmt.Errorf("levels: %w", err)
		}
		overrides[category] = level
	}
	return asset.CustomPolicy(overrides), nil
}
