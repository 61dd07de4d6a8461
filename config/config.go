// Package config loads the application configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Hotkey     HotkeyConfig     `yaml:"hotkey"`
	Window     WindowConfig     `yaml:"window"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level           string `yaml:"level"`            // "debug", "info", "warn" or "error"
	FileEnabled     bool   `yaml:"file_enabled"`     // Enable file logging
	FilePath        string `yaml:"file_path"`        // Log file path; empty uses the user log directory
	MaxFileSize     string `yaml:"max_file_size"`    // Max file size before rotation (e.g. "100MB")
	MaxFiles        int    `yaml:"max_files"`        // Rotated files to keep
	CompressRotated bool   `yaml:"compress_rotated"` // Compress rotated log files
}

// TranscriptConfig controls caption history storage.
type TranscriptConfig struct {
	Enabled         bool          `yaml:"enabled"`          // Store received captions
	DatabasePath    string        `yaml:"database_path"`    // SQLite file path; empty uses the user data directory
	RetentionDays   int           `yaml:"retention_days"`   // Days of history to keep; 0 uses the default, negative keeps everything
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // How often old captions are purged
}

// HotkeyConfig controls the global shortcut.
type HotkeyConfig struct {
	Enabled bool `yaml:"enabled"` // Register Ctrl+Shift+O for toggling the overlay
}

// WindowConfig sizes the main window.
type WindowConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses configuration from raw YAML, typically the
// embedded default config.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.FileEnabled && c.Logging.MaxFileSize == "" {
		c.Logging.MaxFileSize = "100MB"
	}
	if c.Logging.FileEnabled && c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = 10
	}

	if c.Transcript.RetentionDays == 0 {
		c.Transcript.RetentionDays = 30
	}
	if c.Transcript.CleanupInterval == 0 {
		c.Transcript.CleanupInterval = 6 * time.Hour
	}

	if c.Window.Width == 0 {
		c.Window.Width = 1100
	}
	if c.Window.Height == 0 {
		c.Window.Height = 750
	}
	if c.Window.MinWidth == 0 {
		c.Window.MinWidth = 800
	}
	if c.Window.MinHeight == 0 {
		c.Window.MinHeight = 560
	}
}

// validate checks configuration consistency
func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Transcript.CleanupInterval < time.Minute {
		return fmt.Errorf("transcript cleanup_interval too short: %s", c.Transcript.CleanupInterval)
	}

	if c.Window.Width < c.Window.MinWidth || c.Window.Height < c.Window.MinHeight {
		return fmt.Errorf("window size %dx%d smaller than minimum %dx%d",
			c.Window.Width, c.Window.Height, c.Window.MinWidth, c.Window.MinHeight)
	}

	return nil
}

// Retention converts the configured retention to a duration. Zero means
// keep everything.
func (c *TranscriptConfig) Retention() time.Duration {
	if c.RetentionDays < 0 {
		return 0
	}
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
