// Package config loads the keyviz settings snapshot.
//
// Settings are read once at startup from an INI, TOML or YAML file. Every
// field is decoded on its own: a missing, mistyped or out-of-range value
// falls back to its default and is reported as a Diagnostic, so a bad
// config file never prevents startup.
package config

import (
	"maps"
	"os"
	"strings"
	"time"
)

// Config holds every setting.
type Config struct {
	// Appearance controls how a popup looks and how long it lives.
	Appearance AppearanceConfig `toml:"appearance" json:"appearance" yaml:"appearance"`

	// Position controls where popups appear.
	Position PositionConfig `toml:"position" json:"position" yaml:"position"`

	// Capture controls device discovery and queue polling.
	Capture CaptureConfig `toml:"capture" json:"capture" yaml:"capture"`

	// Control enables the D-Bus control surface.
	Control ControlConfig `toml:"control" json:"control" yaml:"control"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Glyphs overrides the built-in table, keyed by key identifier.
	// Values are literal text or U+XXXX code points.
	Glyphs map[string]string `toml:"glyphs" json:"glyphs" yaml:"glyphs"`
}

// AppearanceConfig holds popup styling.
type AppearanceConfig struct {
	FontFamily string `toml:"font_family" json:"font_family" yaml:"font_family"`

	// FontFile, when set, is loaded instead of looking up FontFamily.
	FontFile string `toml:"font_file" json:"font_file" yaml:"font_file"`

	FontSize   int    `toml:"font_size" json:"font_size" yaml:"font_size"`
	TextColor  string `toml:"text_color" json:"text_color" yaml:"text_color"`
	BgColor    string `toml:"bg_color" json:"bg_color" yaml:"bg_color"`
	PaddingX   int    `toml:"padding_x" json:"padding_x" yaml:"padding_x"`
	PaddingY   int    `toml:"padding_y" json:"padding_y" yaml:"padding_y"`
	DurationMs int    `toml:"duration_ms" json:"duration_ms" yaml:"duration_ms"`
}

// PositionConfig holds popup placement.
type PositionConfig struct {
	Position string `toml:"position" json:"position" yaml:"position"`
	XOffset  int    `toml:"x_offset" json:"x_offset" yaml:"x_offset"`
	YOffset  int    `toml:"y_offset" json:"y_offset" yaml:"y_offset"`
}

// CaptureConfig holds input settings.
type CaptureConfig struct {
	// PollIntervalMs is the pause between queue polls.
	PollIntervalMs int `toml:"poll_interval_ms" json:"poll_interval_ms" yaml:"poll_interval_ms"`

	// Hotplug starts listeners for keyboards connected after startup.
	Hotplug bool `toml:"hotplug" json:"hotplug" yaml:"hotplug"`

	// DeviceDir is the directory holding evdev nodes.
	DeviceDir string `toml:"device_dir" json:"device_dir" yaml:"device_dir"`

	// ReadyMessage is shown once shortly after startup. Empty disables it.
	ReadyMessage string `toml:"ready_message" json:"ready_message" yaml:"ready_message"`
}

// ControlConfig holds control surface settings.
type ControlConfig struct {
	DBus bool `toml:"dbus" json:"dbus" yaml:"dbus"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level: debug, info, warn, error
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format: text, json
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output: file, stderr, stdout, both
	Output string `toml:"output" json:"output" yaml:"output"`

	// File is the log file path. Empty means the default state directory.
	File string `toml:"file" json:"file" yaml:"file"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Appearance: AppearanceConfig{
			FontFamily: "Kenney Input Keyboard & Mouse",
			FontSize:   24,
			TextColor:  "white",
			BgColor:    "#2E2E2E",
			PaddingX:   20,
			PaddingY:   10,
			DurationMs: 1500,
		},
		Position: PositionConfig{
			Position: "bottom-center",
			XOffset:  0,
			YOffset:  -150,
		},
		Capture: CaptureConfig{
			PollIntervalMs: 50,
			DeviceDir:      "/dev/input",
			ReadyMessage:   "Ready!",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "file",
		},
		Glyphs: map[string]string{},
	}
}

// Duration is how long each popup stays visible.
func (a AppearanceConfig) Duration() time.Duration {
	return time.Duration(a.DurationMs) * time.Millisecond
}

// PollInterval is the pause between queue polls.
func (c CaptureConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// ApplyEnvOverrides applies KEYVIZ_* environment overrides. An invalid
// log level is reported and leaves the current level in place.
func (c *Config) ApplyEnvOverrides() Diagnostics {
	var diags Diagnostics
	if v := os.Getenv("KEYVIZ_LOG_LEVEL"); v != "" {
		diags = append(diags, c.SetLogLevel(v)...)
	}
	if v := os.Getenv("KEYVIZ_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("KEYVIZ_DEVICE_DIR"); v != "" {
		c.Capture.DeviceDir = v
	}
	if v := os.Getenv("KEYVIZ_FONT_FILE"); v != "" {
		c.Appearance.FontFile = v
	}
	return diags
}

// SetLogLevel overrides logging.level after loading. A level the schema
// rejects is reported and the current level kept.
func (c *Config) SetLogLevel(v string) Diagnostics {
	level := strings.ToLower(strings.TrimSpace(v))
	diags, err := validate(map[string]map[string]any{"logging": {"level": level}})
	if err != nil {
		return Diagnostics{{Message: "schema check skipped: " + err.Error()}}
	}
	if len(diags) > 0 {
		return diags
	}
	c.Logging.Level = level
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Glyphs = maps.Clone(c.Glyphs)
	if clone.Glyphs == nil {
		clone.Glyphs = map[string]string{}
	}
	return &clone
}
