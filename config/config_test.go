// Package config - Tests for configuration management
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig should not return nil")
	}

	// Check default values
	if cfg.Dashboard.URL != "http://localhost:3001" {
		t.Errorf("Expected default dashboard URL http://localhost:3001, got %s", cfg.Dashboard.URL)
	}

	if cfg.Dashboard.MarkerTimeoutMS != 10000 {
		t.Errorf("Expected default marker timeout of 10000ms, got %d", cfg.Dashboard.MarkerTimeoutMS)
	}

	if cfg.Capture.SettleDelayMS != 2000 {
		t.Errorf("Expected default settle delay of 2000ms, got %d", cfg.Capture.SettleDelayMS)
	}

	if !cfg.Browser.Headless {
		t.Error("Browser should be headless by default")
	}

	if cfg.Dashboard.LoadedMarker != "Admin Dashboard" {
		t.Errorf("Expected loaded marker 'Admin Dashboard', got %s", cfg.Dashboard.LoadedMarker)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()

	// Defaults should validate
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}

	// Test missing URL
	cfg.Dashboard.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validation should fail without a dashboard URL")
	}
	cfg.Dashboard.URL = "http://localhost:3001" // Reset

	// Test invalid marker timeout
	cfg.Dashboard.MarkerTimeoutMS = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validation should fail with zero marker timeout")
	}
	cfg.Dashboard.MarkerTimeoutMS = 10000 // Reset

	// Test missing output path
	cfg.Capture.OutputPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validation should fail without an output path")
	}
	cfg.Capture.OutputPath = "./screenshots/manual_screenshot.png" // Reset

	// Test negative settle delay
	cfg.Capture.SettleDelayMS = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validation should fail with negative settle delay")
	}
	cfg.Capture.SettleDelayMS = 2000 // Reset

	// Test invalid log level
	cfg.Logging.Level = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("Validation should fail with invalid log level")
	}
}

func TestEnvOverrides(t *testing.T) {
	// Set environment variables
	os.Setenv("DASHBOARD_URL", "http://localhost:9999")
	os.Setenv("ADMIN_ID", "env_admin")
	os.Setenv("ADMIN_PASSWORD", "env_password")
	os.Setenv("SCREENSHOT_PATH", "/tmp/env_screenshot.png")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("DASHBOARD_URL")
		os.Unsetenv("ADMIN_ID")
		os.Unsetenv("ADMIN_PASSWORD")
		os.Unsetenv("SCREENSHOT_PATH")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Dashboard.URL != "http://localhost:9999" {
		t.Errorf("URL should be overridden from env, got %s", cfg.Dashboard.URL)
	}

	if cfg.Dashboard.AdminID != "env_admin" {
		t.Errorf("Admin ID should be overridden from env, got %s", cfg.Dashboard.AdminID)
	}

	if cfg.Dashboard.AdminPassword != "env_password" {
		t.Error("Password should be overridden from env")
	}

	if cfg.Capture.OutputPath != "/tmp/env_screenshot.png" {
		t.Errorf("Output path should be overridden from env, got %s", cfg.Capture.OutputPath)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Log level should be debug from env, got %s", cfg.Logging.Level)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Browser.Timeout = 60

	if cfg.GetTimeout().Seconds() != 60 {
		t.Errorf("Expected 60 seconds, got %f", cfg.GetTimeout().Seconds())
	}

	if cfg.MarkerTimeout().Milliseconds() != 10000 {
		t.Errorf("Expected 10000ms marker timeout, got %d", cfg.MarkerTimeout().Milliseconds())
	}

	if cfg.SettleDelay().Milliseconds() != 2000 {
		t.Errorf("Expected 2000ms settle delay, got %d", cfg.SettleDelay().Milliseconds())
	}
}

func TestLoadConfigNonExistent(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err != nil {
		t.Errorf("Should not error for non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Config should not be nil")
	}

	// Should have defaults
	if cfg.Dashboard.MarkerTimeoutMS != 10000 {
		t.Error("Should have default marker timeout")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yamlContent := `
dashboard:
  url: http://localhost:4000
  admin_id: fileadmin
capture:
  settle_delay_ms: 500
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Dashboard.URL != "http://localhost:4000" {
		t.Errorf("URL should come from file, got %s", cfg.Dashboard.URL)
	}

	if cfg.Dashboard.AdminID != "fileadmin" {
		t.Errorf("Admin ID should come from file, got %s", cfg.Dashboard.AdminID)
	}

	if cfg.Capture.SettleDelayMS != 500 {
		t.Errorf("Settle delay should come from file, got %d", cfg.Capture.SettleDelayMS)
	}

	// Untouched fields keep defaults
	if cfg.Dashboard.LoadedMarker != "Admin Dashboard" {
		t.Error("Loaded marker should keep its default")
	}
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	cfg := DefaultConfig()
	cfg.Dashboard.URL = "http://localhost:5000"

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig of saved file failed: %v", err)
	}

	if loaded.Dashboard.URL != "http://localhost:5000" {
		t.Errorf("Round-tripped URL mismatch, got %s", loaded.Dashboard.URL)
	}
}
