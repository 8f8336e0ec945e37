package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
version: "1"
backend_url: https://script.example/macros/s/abc/exec
timeout: 10s
max_attempts: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(LoadOptions{ExplicitPath: path, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, "https://script.example/macros/s/abc/exec", cfg.BackendURL)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, "10s", cfg.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvBackendURL, "https://env.example/exec")
	t.Setenv(EnvTimeout, "3s")
	t.Setenv(EnvMaxAttempts, "7")

	cfg, err := Load(LoadOptions{ExplicitPath: filepath.Join(t.TempDir(), "none.yaml")})
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/exec", cfg.BackendURL)
	assert.Equal(t, "3s", cfg.Timeout)
	assert.Equal(t, 7, cfg.MaxAttempts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"bad timeout", func(c *Config) { c.Timeout = "soon" }, true},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, true},
		{"empty timeout ok", func(c *Config) { c.Timeout = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeoutDuration_Fallback(t *testing.T) {
	cfg := New()
	cfg.Timeout = "garbage"
	assert.Equal(t, defaultTimeoutDuration, cfg.TimeoutDuration())
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := New()
	cfg.BackendURL = "https://saved.example/exec"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := Load(LoadOptions{ExplicitPath: path, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example/exec", loaded.BackendURL)
}
