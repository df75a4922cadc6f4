// Package config loads insightgate configuration from a YAML file with
// environment variables taking precedence.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	BundlePath string
	Strategy   string
	Remote     RemoteConfig
	Gate       GateConfig
	Shadow     ShadowConfig
	Log        LogConfig
	ConfigDir  string
}

// RemoteConfig configures the model-backed provider.
type RemoteConfig struct {
	Vendor  string `yaml:"vendor"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
}

// GateConfig configures the quality gate.
type GateConfig struct {
	Threshold   float64 `yaml:"threshold"`
	MaxAttempts int     `yaml:"max_attempts"`
	UseJudge    bool    `yaml:"use_judge"`
}

// ShadowConfig configures shadow-mode competition.
type ShadowConfig struct {
	Enabled     bool `yaml:"enabled"`
	CeilingMs   int  `yaml:"ceiling_ms"`
	ProbeWaitMs int  `yaml:"probe_wait_ms"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// FileConfig represents the structure of ~/.insightgate/config.yaml.
type FileConfig struct {
	BundlePath string       `yaml:"bundle_path"`
	Strategy   string       `yaml:"strategy"`
	Remote     RemoteConfig `yaml:"remote"`
	Gate       GateConfig   `yaml:"gate"`
	Shadow     ShadowConfig `yaml:"shadow"`
	Log        LogConfig    `yaml:"log"`
}

// Load reads configuration from the config file and environment.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, eris.Wrap(err, "resolve config directory")
	}
	return LoadFile(filepath.Join(configDir, "config.yaml"), configDir)
}

// LoadFile reads configuration from a specific file path.
func LoadFile(path, configDir string) (*Config, error) {
	fileConfig := loadFileConfig(path)

	cfg := &Config{
		BundlePath: getEnvOrDefault("INSIGHTGATE_BUNDLE", fileConfig.BundlePath),
		Strategy:   getEnvOrDefault("INSIGHTGATE_STRATEGY", fileConfig.Strategy),
		Remote: RemoteConfig{
			Vendor:  getEnvOrDefault("INSIGHTGATE_REMOTE_VENDOR", fileConfig.Remote.Vendor),
			BaseURL: getEnvOrDefault("INSIGHTGATE_REMOTE_URL", fileConfig.Remote.BaseURL),
			Model:   getEnvOrDefault("INSIGHTGATE_REMOTE_MODEL", fileConfig.Remote.Model),
			APIKey:  fileConfig.Remote.APIKey,
		},
		Gate:      fileConfig.Gate,
		Shadow:    fileConfig.Shadow,
		Log:       fileConfig.Log,
		ConfigDir: configDir,
	}

	if key := vendorKeyFromEnv(cfg.Remote.Vendor); key != "" {
		cfg.Remote.APIKey = key
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Strategy == "" {
		cfg.Strategy = "automatic"
	}
	if cfg.Gate.Threshold <= 0 || cfg.Gate.Threshold > 1 {
		cfg.Gate.Threshold = 0.7
	}
	if cfg.Gate.MaxAttempts <= 0 {
		cfg.Gate.MaxAttempts = 3
	}
	if cfg.Shadow.CeilingMs <= 0 {
		cfg.Shadow.CeilingMs = 3000
	}
	if cfg.Shadow.ProbeWaitMs <= 0 {
		cfg.Shadow.ProbeWaitMs = 2000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if ms, err := strconv.Atoi(os.Getenv("INSIGHTGATE_SHADOW_CEILING_MS")); err == nil && ms > 0 {
		cfg.Shadow.CeilingMs = ms
	}
}

// vendorKeyFromEnv returns the conventional API-key variable for a vendor.
func vendorKeyFromEnv(vendor string) string {
	switch vendor {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "google":
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".insightgate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
