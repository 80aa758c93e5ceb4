// Package config handles configuration loading for the digest service.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the digest service.
type Config struct {
	Logs     LogsConfig     `mapstructure:"logs"`
	Database DatabaseConfig `mapstructure:"database"`
	Claude   ClaudeConfig   `mapstructure:"claude"`
	Missions MissionsConfig `mapstructure:"missions"`
}

// LogsConfig holds the execution log layout settings.
type LogsConfig struct {
	// Dir is the root of the folder-per-execution log tree.
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig holds the archive database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file location.
	Path string `mapstructure:"path"`
}

// ClaudeConfig holds the agent subprocess settings.
type ClaudeConfig struct {
	// Binary is the agent CLI executable name or path.
	Binary string `mapstructure:"binary"`
	// Model is the model passed to the agent CLI.
	Model string `mapstructure:"model"`
	// AllowedTools is the comma-separated tool allow-list.
	AllowedTools string `mapstructure:"allowed_tools"`
	// Timeout is the wall-clock limit for one agent attempt.
	Timeout time.Duration `mapstructure:"timeout"`
	// Retries is the number of additional attempts after a failure.
	Retries int `mapstructure:"retries"`
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// MissionsConfig holds mission definition settings.
type MissionsConfig struct {
	// Dir is the directory containing per-mission YAML definitions.
	Dir string `mapstructure:"dir"`
	// Default is the mission used when none is specified.
	Default string `mapstructure:"default"`
}

// Load loads configuration from XDG paths, project overrides, and environment
// variables.
// Precedence (highest to lowest):
// 1. Environment variables (DAILYAI_*)
// 2. Project config (.dailyai.yaml in current directory or parent)
// 3. User config (~/.config/dailyai/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("DAILYAI")

	v.BindEnv("logs.dir", "DAILYAI_LOGS_DIR")
	v.BindEnv("database.path", "DAILYAI_DB_PATH")
	v.BindEnv("claude.model", "DAILYAI_CLAUDE_MODEL")
	v.BindEnv("claude.timeout", "DAILYAI_CLAUDE_TIMEOUT")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logs.dir", "logs")
	v.SetDefault("database.path", DefaultDBPath())

	v.SetDefault("claude.binary", "claude")
	v.SetDefault("claude.model", "claude-sonnet-4-20250514")
	v.SetDefault("claude.allowed_tools", "Read,Write,WebSearch,WebFetch,Task")
	v.SetDefault("claude.timeout", "20m")
	v.SetDefault("claude.retries", 1)
	v.SetDefault("claude.retry_delay", "2s")

	v.SetDefault("missions.dir", "missions")
	v.SetDefault("missions.default", "ai-news")
}

// DefaultDBPath returns the XDG data path for the archive database.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "dailyai", "digests.db")
}

// getUserConfigDir returns the XDG config directory for the service.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dailyai")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "dailyai")
	}
	return filepath.Join(home, ".config", "dailyai")
}

// findProjectConfig searches for .dailyai.yaml in the current directory and
// parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".dailyai.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Logs: LogsConfig{
			Dir: "logs",
		},
		Database: DatabaseConfig{
			Path: DefaultDBPath(),
		},
		Claude: ClaudeConfig{
			Binary:       "claude",
			Model:        "claude-sonnet-4-20250514",
			AllowedTools: "Read,Write,WebSearch,WebFetch,Task",
			Timeout:      20 * time.Minute,
			Retries:      1,
			RetryDelay:   2 * time.Second,
		},
		Missions: MissionsConfig{
			Dir:     "missions",
			Default: "ai-news",
		},
	}
}
