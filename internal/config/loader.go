package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CARTRIDGE"

// Load returns DefaultConfig overlaid with the YAML file at path (skipped
// when path is empty) and then with environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := newViper(cfg)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newViper registers every key with its default so that environment
// variables are picked up by Unmarshal.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cache.warm_on_startup", defaults.Cache.WarmOnStartup)
	v.SetDefault("bulk.parallelism", defaults.Bulk.Parallelism)
	v.SetDefault("cartridges.root", defaults.Cartridges.Root)
	v.SetDefault("config.root", defaults.Config.Root)
	v.SetDefault("http.addr", defaults.HTTP.Addr)
	v.SetDefault("persistence.enabled", defaults.Persistence.Enabled)
	v.SetDefault("persistence.dsn", defaults.Persistence.DSN)

	return v
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Bulk.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("bulk.parallelism must not be negative, got %d", c.Bulk.Parallelism))
	}

	if strings.TrimSpace(c.Cartridges.Root) == "" {
		errs = append(errs, errors.New("cartridges.root is required"))
	}

	if strings.TrimSpace(c.Config.Root) == "" {
		errs = append(errs, errors.New("config.root is required"))
	}

	if c.Persistence.Enabled && strings.TrimSpace(c.Persistence.DSN) == "" {
		errs = append(errs, errors.New("persistence.dsn is required when persistence is enabled"))
	}

	return errors.Join(errs...)
}
