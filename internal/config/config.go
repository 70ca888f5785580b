// Package config loads client configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML can carry Go duration strings
// ("10s", "15m").
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the assembled client configuration.
type Config struct {
	// Server is the backend pipeline store base URL.
	Server string `yaml:"server"`
	// Token authenticates against the pipeline store.
	Token string `yaml:"token"`

	Jupyter struct {
		Server string `yaml:"server"`
		Token  string `yaml:"token"`
	} `yaml:"jupyter"`

	// KernelIdleTimeout bounds the post-restart wait for idle.
	KernelIdleTimeout Duration `yaml:"kernel_idle_timeout"`

	Redis struct {
		// URL enables the redis run locker when set; empty selects the
		// in-process locker.
		URL     string   `yaml:"url"`
		LockTTL Duration `yaml:"lock_ttl"`
	} `yaml:"redis"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	var c Config
	c.Server = "http://localhost:8866"
	c.Jupyter.Server = "http://localhost:8888"
	c.KernelIdleTimeout = Duration(5 * time.Second)
	c.LogLevel = "info"
	return c
}

// Load reads the config file at path (skipped when path is empty or
// missing) and applies environment overrides on top of defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; fall through to env overrides.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	if cfg.KernelIdleTimeout <= 0 {
		cfg.KernelIdleTimeout = Duration(5 * time.Second)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CALKIT_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("CALKIT_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("JUPYTER_SERVER"); v != "" {
		cfg.Jupyter.Server = v
	}
	if v := os.Getenv("JUPYTER_TOKEN"); v != "" {
		cfg.Jupyter.Token = v
	}
	if v := os.Getenv("NBSTAGE_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("NBSTAGE_KERNEL_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.KernelIdleTimeout = Duration(d)
		}
	}
	if v := os.Getenv("NBSTAGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
