package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	// Missing file yields a fully defaulted config, not an error.
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, "automatic", cfg.Strategy)
	assert.Equal(t, 0.7, cfg.Gate.Threshold)
	assert.Equal(t, 3, cfg.Gate.MaxAttempts)
	assert.Equal(t, 3000, cfg.Shadow.CeilingMs)
	assert.Equal(t, 2000, cfg.Shadow.ProbeWaitMs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Shadow.Enabled)
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfigFile(t, `
bundle_path: /data/bundle
strategy: hybrid
remote:
  vendor: openai
  base_url: http://localhost:11434/v1
  model: llama3
  api_key: file-key
gate:
  threshold: 0.8
  max_attempts: 5
  use_judge: true
shadow:
  enabled: true
  ceiling_ms: 1500
log:
  level: debug
  development: true
`)

	cfg, err := LoadFile(path, filepath.Dir(path))
	require.NoError(t, err)

	assert.Equal(t, "/data/bundle", cfg.BundlePath)
	assert.Equal(t, "hybrid", cfg.Strategy)
	assert.Equal(t, "openai", cfg.Remote.Vendor)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Remote.BaseURL)
	assert.Equal(t, "llama3", cfg.Remote.Model)
	assert.Equal(t, 0.8, cfg.Gate.Threshold)
	assert.Equal(t, 5, cfg.Gate.MaxAttempts)
	assert.True(t, cfg.Gate.UseJudge)
	assert.True(t, cfg.Shadow.Enabled)
	assert.Equal(t, 1500, cfg.Shadow.CeilingMs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, filepath.Dir(path), cfg.ConfigDir)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
bundle_path: /data/bundle
strategy: template
remote:
  vendor: openai
  model: llama3
`)

	t.Setenv("INSIGHTGATE_BUNDLE", "/env/bundle")
	t.Setenv("INSIGHTGATE_STRATEGY", "content")
	t.Setenv("INSIGHTGATE_REMOTE_MODEL", "mistral")
	t.Setenv("INSIGHTGATE_SHADOW_CEILING_MS", "750")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, "/env/bundle", cfg.BundlePath)
	assert.Equal(t, "content", cfg.Strategy)
	assert.Equal(t, "mistral", cfg.Remote.Model)
	assert.Equal(t, "openai", cfg.Remote.Vendor, "unset env vars keep the file value")
	assert.Equal(t, 750, cfg.Shadow.CeilingMs)
}

func TestVendorKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := writeConfigFile(t, `
remote:
  vendor: openai
  api_key: file-key
`)

	cfg, err := LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.Remote.APIKey, "vendor env key beats the file key")
}

func TestVendorKeyUnknownVendor(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := writeConfigFile(t, `
remote:
  vendor: ollama
  api_key: file-key
`)

	cfg, err := LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Remote.APIKey)
}

func TestMalformedFileFallsBackToDefaults(t *testing.T) {
	path := writeConfigFile(t, "{{{not yaml")

	cfg, err := LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "automatic", cfg.Strategy)
}

func TestOutOfRangeValuesReplacedByDefaults(t *testing.T) {
	path := writeConfigFile(t, `
gate:
  threshold: 1.5
  max_attempts: -2
`)

	cfg, err := LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Gate.Threshold)
	assert.Equal(t, 3, cfg.Gate.MaxAttempts)
}
