// Package config loads glance settings from file, environment, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/dadukhankevin/Glance/internal/health"
	"github.com/dadukhankevin/Glance/internal/resolve"
)

// configName is the config file name without extension.
const configName = ".glance"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for glance settings.
const envPrefix = "GLANCE"

// defaultViewLimit caps how many shards a view returns per page.
const defaultViewLimit = 50

// Config holds all tunable glance settings.
type Config struct {
	// ProjectRoot anchors relative shard file paths.
	ProjectRoot string `mapstructure:"project_root"`
	// DBPath overrides the default shard database location.
	DBPath   string         `mapstructure:"db_path"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Health   HealthConfig   `mapstructure:"health"`
	View     ViewConfig     `mapstructure:"view"`
}

// ResolverConfig bounds the anchor resolution fallbacks.
type ResolverConfig struct {
	HintRadius int `mapstructure:"hint_radius"`
	BlockScan  int `mapstructure:"block_scan"`
	BlockCap   int `mapstructure:"block_cap"`
	Window     int `mapstructure:"window"`
}

// HealthConfig sets the verdict thresholds.
type HealthConfig struct {
	HealthyThreshold float64 `mapstructure:"healthy_threshold"`
	StaleThreshold   float64 `mapstructure:"stale_threshold"`
	MaxStaleViews    int     `mapstructure:"max_stale_views"`
}

// ViewConfig sets view pagination defaults.
type ViewConfig struct {
	Limit int `mapstructure:"limit"`
}

// Load reads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise the config file is searched in CWD and $HOME. A missing config
// file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in settings without consulting any config
// file or environment variable.
func Default() *Config {
	opts := resolve.DefaultOptions()
	th := health.DefaultThresholds()

	return &Config{
		ProjectRoot: ".",
		Resolver: ResolverConfig{
			HintRadius: opts.HintRadius,
			BlockScan:  opts.BlockScan,
			BlockCap:   opts.BlockCap,
			Window:     opts.Window,
		},
		Health: HealthConfig{
			HealthyThreshold: th.Healthy,
			StaleThreshold:   th.Stale,
			MaxStaleViews:    th.MaxStaleViews,
		},
		View: ViewConfig{Limit: defaultViewLimit},
	}
}

func applyDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("project_root", d.ProjectRoot)
	v.SetDefault("db_path", d.DBPath)

	v.SetDefault("resolver.hint_radius", d.Resolver.HintRadius)
	v.SetDefault("resolver.block_scan", d.Resolver.BlockScan)
	v.SetDefault("resolver.block_cap", d.Resolver.BlockCap)
	v.SetDefault("resolver.window", d.Resolver.Window)

	v.SetDefault("health.healthy_threshold", d.Health.HealthyThreshold)
	v.SetDefault("health.stale_threshold", d.Health.StaleThreshold)
	v.SetDefault("health.max_stale_views", d.Health.MaxStaleViews)

	v.SetDefault("view.limit", d.View.Limit)
}

// Validate checks that the loaded settings are usable.
func (c *Config) Validate() error {
	if c.Health.HealthyThreshold < 0 || c.Health.HealthyThreshold > 1 {
		return fmt.Errorf("health.healthy_threshold %v outside [0, 1]", c.Health.HealthyThreshold)
	}
	if c.Health.StaleThreshold < 0 || c.Health.StaleThreshold > 1 {
		return fmt.Errorf("health.stale_threshold %v outside [0, 1]", c.Health.StaleThreshold)
	}
	if c.Health.StaleThreshold > c.Health.HealthyThreshold {
		return fmt.Errorf("health.stale_threshold %v above healthy_threshold %v",
			c.Health.StaleThreshold, c.Health.HealthyThreshold)
	}
	if c.Health.MaxStaleViews < 1 {
		return fmt.Errorf("health.max_stale_views must be at least 1, got %d", c.Health.MaxStaleViews)
	}
	if c.Resolver.HintRadius < 0 {
		return fmt.Errorf("resolver.hint_radius must not be negative, got %d", c.Resolver.HintRadius)
	}
	if c.Resolver.BlockScan < 1 || c.Resolver.BlockCap < 1 || c.Resolver.Window < 1 {
		return fmt.Errorf("resolver block_scan, block_cap, and window must be positive")
	}
	if c.View.Limit < 1 {
		return fmt.Errorf("view.limit must be positive, got %d", c.View.Limit)
	}
	return nil
}

// ResolveOptions maps the resolver settings into engine options.
func (c *Config) ResolveOptions() resolve.Options {
	return resolve.Options{
		HintRadius: c.Resolver.HintRadius,
		BlockScan:  c.Resolver.BlockScan,
		BlockCap:   c.Resolver.BlockCap,
		Window:     c.Resolver.Window,
	}
}

// Thresholds maps the health settings into engine thresholds.
func (c *Config) Thresholds() health.Thresholds {
	return health.Thresholds{
		Healthy:       c.Health.HealthyThreshold,
		Stale:         c.Health.StaleThreshold,
		MaxStaleViews: c.Health.MaxStaleViews,
	}
}
