// Package config handles sodam configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration structure for sodam.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Chat settings
	Chat ChatConfig `yaml:"chat" mapstructure:"chat"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global sodam settings.
type GlobalConfig struct {
	// DataDir is where sodam stores its data (default: ~/.local/share/sodam).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeoutMs is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The TUI always logs to a file.
	File string `yaml:"file" mapstructure:"file"`
}

// ChatConfig contains message sync settings.
type ChatConfig struct {
	// PageSize is how many messages one history page holds.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (light, dark).
	Theme string `yaml:"theme" mapstructure:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir: filepath.Join(homeDir, ".local", "share", "sodam"),
		},
		Database: DatabaseConfig{
			Path:          "", // Will be set to DataDir/sodam.db
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Chat: ChatConfig{
			PageSize: 20,
		},
		TUI: TUIConfig{
			Theme: "light",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Chat.PageSize < 1 {
		return fmt.Errorf("chat.page_size must be at least 1")
	}
	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}
	switch c.TUI.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("tui.theme must be one of light, dark")
	}
	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Global.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Global.DataDir, err)
	}
	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "sodam.db")
}

// LogFilePath returns the log file path used while the TUI runs.
func (c *Config) LogFilePath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.Global.DataDir, "sodam.log")
}

// PrefsPath returns the path of the persisted UI preference store.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.Global.DataDir, "prefs.json")
}
