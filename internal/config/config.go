// Package config handles loreweave configuration loading and
// validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration structure for loreweave.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Viewport defaults for the timeline
	Viewport ViewportConfig `yaml:"viewport" mapstructure:"viewport"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global loreweave settings.
type GlobalConfig struct {
	// DataDir is where loreweave stores its data
	// (default: ~/.local/share/loreweave).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored
	// (default: ~/.config/loreweave).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// ViewportConfig contains timeline viewport defaults.
type ViewportConfig struct {
	// MinSpan is the smallest window span the viewport will hold.
	MinSpan float64 `yaml:"min_span" mapstructure:"min_span"`

	// DefaultSpan is the window span shown at session start.
	DefaultSpan float64 `yaml:"default_span" mapstructure:"default_span"`

	// DragMargin is the fractional window offset used when a drag
	// auto-pans the viewport.
	DragMargin float64 `yaml:"drag_margin" mapstructure:"drag_margin"`
}

// TUIConfig contains terminal UI settings.
type TUIConfig struct {
	// Theme selects the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// MouseEnabled turns on mouse support (wheel zoom, drag).
	MouseEnabled bool `yaml:"mouse_enabled" mapstructure:"mouse_enabled"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".local", "share", "loreweave")

	return &Config{
		Global: GlobalConfig{
			DataDir:   dataDir,
			ConfigDir: filepath.Join(home, ".config", "loreweave"),
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dataDir, "loreweave.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Viewport: ViewportConfig{
			MinSpan:     1,
			DefaultSpan: 100,
			DragMargin:  0.2,
		},
		TUI: TUIConfig{
			Theme:        "default",
			MouseEnabled: true,
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}
	if c.Viewport.MinSpan <= 0 {
		return fmt.Errorf("viewport.min_span must be positive, got %g", c.Viewport.MinSpan)
	}
	if c.Viewport.DefaultSpan < c.Viewport.MinSpan {
		return fmt.Errorf("viewport.default_span %g is below min_span %g", c.Viewport.DefaultSpan, c.Viewport.MinSpan)
	}
	if c.Viewport.DragMargin <= 0 || c.Viewport.DragMargin >= 0.5 {
		return fmt.Errorf("viewport.drag_margin must be in (0, 0.5), got %g", c.Viewport.DragMargin)
	}
	return nil
}

// EnsureDirectories creates the data and config directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Global.DataDir, c.Global.ConfigDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
