// Package config provides configuration loading and validation for the CLI
// and the server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied when neither the config file, the environment, nor a CLI
// flag supplies a value.
const (
	DefaultPort            = 8000
	DefaultDataPath        = "research_db.json"
	DefaultRefreshInterval = time.Hour
)

// Config represents the service configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Sources
	ResearchListURL string `json:"research_list_url,omitempty"` // Research board list URL
	VideoHandleURL  string `json:"video_handle_url,omitempty"`  // YouTube channel handle URL

	// Storage
	DataPath    string `json:"data_path,omitempty"`    // Path to the JSON report store
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL (optional)

	// Server
	Port            int    `json:"port,omitempty"`             // HTTP listen port
	RefreshInterval string `json:"refresh_interval,omitempty"` // Background scan interval (Go duration)

	// Behavior
	APIKey     string `json:"api_key,omitempty"`     // Gemini API key
	UseBrowser bool   `json:"use_browser,omitempty"` // Use headless browser fallback for the board
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed run output
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables. Empty
// variables leave the corresponding field unset.
func FromEnv() Config {
	cfg := Config{
		ResearchListURL: os.Getenv("RESEARCH_LIST_URL"),
		VideoHandleURL:  os.Getenv("VIDEO_HANDLE_URL"),
		DataPath:        os.Getenv("DATA_PATH"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		RefreshInterval: os.Getenv("REFRESH_INTERVAL"),
	}
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &cfg.Port) //nolint:errcheck // unset on parse failure
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Note: required fields are checked by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RefreshInterval != "" {
		if _, err := time.ParseDuration(c.RefreshInterval); err != nil {
			return fmt.Errorf("config error: 'refresh_interval' is not a valid duration: %w", err)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags and environment variables.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.ResearchListURL == "" {
		result.ResearchListURL = defaults.ResearchListURL
	}
	if result.VideoHandleURL == "" {
		result.VideoHandleURL = defaults.VideoHandleURL
	}
	if result.DataPath == "" {
		result.DataPath = defaults.DataPath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.RefreshInterval == "" {
		result.RefreshInterval = defaults.RefreshInterval
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// RefreshIntervalOrDefault parses the configured refresh interval, falling
// back to the default when unset.
func (c *Config) RefreshIntervalOrDefault() time.Duration {
	if c.RefreshInterval == "" {
		return DefaultRefreshInterval
	}
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return DefaultRefreshInterval
	}
	return d
}
