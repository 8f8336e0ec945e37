// Package config provides configuration management for hanzictl.
// Configuration is loaded from a YAML file with environment variable
// overrides; mutable client state (active backend URL, demo flag, pending
// queue) lives in the storage package, not here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the current config schema version.
const Version = "1"

// Default file locations.
const (
	GlobalConfigDir  = ".config/hanzictl"
	GlobalConfigFile = "config.yaml"
	DefaultStateDir  = ".config/hanzictl"
)

// DefaultBackendURL is the compiled-in backend deployment URL.
// Overridable at build time:
//
//	go build -ldflags "-X github.com/hanzihome/portal/internal/config.DefaultBackendURL=https://..."
var DefaultBackendURL = ""

// Default request settings.
const (
	DefaultTimeout     = "25s"
	DefaultMaxAttempts = 3
)

// Environment variable names.
const (
	EnvBackendURL  = "HANZICTL_BACKEND_URL"
	EnvStateDir    = "HANZICTL_STATE_DIR"
	EnvTimeout     = "HANZICTL_TIMEOUT"
	EnvMaxAttempts = "HANZICTL_MAX_ATTEMPTS"
)

// Config represents the complete hanzictl configuration.
type Config struct {
	Version     string `yaml:"version"`
	BackendURL  string `yaml:"backend_url"`
	StateDir    string `yaml:"state_dir"`
	Timeout     string `yaml:"timeout"`
	MaxAttempts int    `yaml:"max_attempts"`
}

// Errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Version:     Version,
		BackendURL:  DefaultBackendURL,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// LoadOptions configures config loading behavior.
type LoadOptions struct {
	// ExplicitPath overrides config discovery (--config flag).
	ExplicitPath string
	// SkipEnv skips environment variable overrides.
	SkipEnv bool
}

// Load loads configuration with the following precedence (highest to lowest):
// 1. Environment variables
// 2. Config file (~/.config/hanzictl/config.yaml, or ExplicitPath)
// 3. Built-in defaults
func Load(opts LoadOptions) (*Config, error) {
	cfg := New()

	path := opts.ExplicitPath
	if path == "" {
		globalPath, err := globalConfigPath()
		if err == nil {
			path = globalPath
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if !opts.SkipEnv {
		applyEnvOverrides(cfg)
	}

	return cfg, nil
}

// loadFile reads and unmarshals a YAML config file into cfg.
// Fields not present in the file retain their current values.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Config path from trusted source
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// globalConfigPath returns the path to the global config file.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile), nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		cfg.Timeout = v
	}
	if v := os.Getenv(EnvMaxAttempts); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
}

// Validate checks the configuration for errors.
func (cfg *Config) Validate() error {
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("%w: invalid timeout %q: %w", ErrInvalidConfig, cfg.Timeout, err)
		}
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// defaultTimeoutDuration is the parsed default timeout.
var defaultTimeoutDuration = mustParseDuration(DefaultTimeout)

func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic("invalid default duration: " + s)
	}
	return d
}

// TimeoutDuration returns the request timeout as a time.Duration,
// falling back to the default when unset or invalid.
func (cfg *Config) TimeoutDuration() time.Duration {
	if cfg.Timeout == "" {
		return defaultTimeoutDuration
	}
	d, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return defaultTimeoutDuration
	}
	return d
}

// ResolveStateDir returns the directory for persisted client state,
// defaulting to ~/.config/hanzictl.
func (cfg *Config) ResolveStateDir() (string, error) {
	if cfg.StateDir != "" {
		return cfg.StateDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve state dir: %w", err)
	}
	return filepath.Join(home, DefaultStateDir), nil
}

// SaveTo writes the config to the specified path, creating parent
// directories if needed.
func (cfg *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveGlobal writes the config to the global config file.
func (cfg *Config) SaveGlobal() error {
	path, err := globalConfigPath()
	if err != nil {
		return fmt.Errorf("get global config path: %w", err)
	}
	return cfg.SaveTo(path)
}
