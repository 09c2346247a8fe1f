// Package config provides configuration management for the dashboard
// snapshot tool. It supports YAML configuration files with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the snapshot tool
type Config struct {
	// Dashboard target and page markers
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Browser configuration
	Browser BrowserConfig `yaml:"browser"`

	// Screenshot capture configuration
	Capture CaptureConfig `yaml:"capture"`

	// Capture-run history configuration
	Storage StorageConfig `yaml:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// DashboardConfig holds the target dashboard settings: where it lives,
// which text markers signal readiness, and the login form details
type DashboardConfig struct {
	URL                 string `yaml:"url"`
	LoadedMarker        string `yaml:"loaded_marker"`
	LoginButtonText     string `yaml:"login_button_text"`
	IDPlaceholder       string `yaml:"id_placeholder"`
	PasswordPlaceholder string `yaml:"password_placeholder"`
	AdminID             string `yaml:"admin_id"`
	AdminPassword       string `yaml:"admin_password"`
	AuthenticatedMarker string `yaml:"authenticated_marker"`
	MarkerTimeoutMS     int    `yaml:"marker_timeout_ms"`
}

// BrowserConfig holds browser automation settings
type BrowserConfig struct {
	Headless       bool `yaml:"headless"`
	Timeout        int  `yaml:"timeout_seconds"`
	ViewportWidth  int  `yaml:"viewport_width"`
	ViewportHeight int  `yaml:"viewport_height"`
}

// CaptureConfig holds screenshot output settings
type CaptureConfig struct {
	OutputPath    string `yaml:"output_path"`
	SettleDelayMS int    `yaml:"settle_delay_ms"`
	FullPage      bool   `yaml:"full_page"`
}

// StorageConfig holds capture-run history settings
type StorageConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputFile string `yaml:"output_file"`
}

// DefaultConfig returns a configuration with sensible defaults.
// The dashboard defaults match the admin dashboard this tool was written
// against: a local server on port 3001 with an optional login form in
// front of the metrics view.
func DefaultConfig() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			URL:                 "http://localhost:3001",
			LoadedMarker:        "Admin Dashboard",
			LoginButtonText:     "Access Dashboard",
			IDPlaceholder:       "Admin ID",
			PasswordPlaceholder: "Password",
			AdminID:             "admin1",
			AdminPassword:       "password123",
			AuthenticatedMarker: "Total Requests",
			MarkerTimeoutMS:     10000,
		},
		Browser: BrowserConfig{
			Headless:       true,
			Timeout:        60,
			ViewportWidth:  1366,
			ViewportHeight: 768,
		},
		Capture: CaptureConfig{
			OutputPath:    "./screenshots/manual_screenshot.png",
			SettleDelayMS: 2000,
			FullPage:      true,
		},
		Storage: StorageConfig{
			Enabled:      true,
			DatabasePath: "./data/dashsnap.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			OutputFile: "",
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment variable overrides
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	// Try to load from file if it exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, use defaults
		} else {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Apply environment variable overrides
	config.applyEnvOverrides()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func (c *Config) applyEnvOverrides() {
	// Target and credentials (most commonly overridden via env)
	if url := os.Getenv("DASHBOARD_URL"); url != "" {
		c.Dashboard.URL = url
	}
	if id := os.Getenv("ADMIN_ID"); id != "" {
		c.Dashboard.AdminID = id
	}
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		c.Dashboard.AdminPassword = password
	}

	// Capture output
	if path := os.Getenv("SCREENSHOT_PATH"); path != "" {
		c.Capture.OutputPath = path
	}

	// Browser settings
	if headless := os.Getenv("BROWSER_HEADLESS"); headless != "" {
		c.Browser.Headless = headless == "true" || headless == "1"
	}

	// Logging
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	// Storage
	if dbPath := os.Getenv("HISTORY_DB_PATH"); dbPath != "" {
		c.Storage.DatabasePath = dbPath
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Dashboard.URL == "" {
		return fmt.Errorf("dashboard url is required")
	}
	if c.Dashboard.LoadedMarker == "" {
		return fmt.Errorf("dashboard loaded_marker is required")
	}
	if c.Dashboard.MarkerTimeoutMS <= 0 {
		return fmt.Errorf("marker_timeout_ms must be positive")
	}

	if c.Capture.OutputPath == "" {
		return fmt.Errorf("capture output_path is required")
	}
	if c.Capture.SettleDelayMS < 0 {
		return fmt.Errorf("settle_delay_ms must not be negative")
	}

	if c.Browser.Timeout <= 0 {
		return fmt.Errorf("browser timeout_seconds must be positive")
	}

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// GetTimeout returns the configured browser timeout as a time.Duration
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Browser.Timeout) * time.Second
}

// MarkerTimeout returns the marker wait budget as a time.Duration
func (c *Config) MarkerTimeout() time.Duration {
	return time.Duration(c.Dashboard.MarkerTimeoutMS) * time.Millisecond
}

// SettleDelay returns the post-load settle delay as a time.Duration
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Capture.SettleDelayMS) * time.Millisecond
}

// SaveConfig saves the current configuration to a YAML file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
