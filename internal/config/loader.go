package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"keyviz/internal/glyph"
)

type kind int

const (
	kindString kind = iota
	kindInt
	kindBool
)

func (k kind) String() string {
	switch k {
	case kindInt:
		return "an integer"
	case kindBool:
		return "a boolean"
	default:
		return "a string"
	}
}

// field binds one section.key to a Config field.
type field struct {
	section string
	key     string
	kind    kind
	ref     func(*Config) any
}

var fields = []field{
	{"appearance", "font_family", kindString, func(c *Config) any { return &c.Appearance.FontFamily }},
	{"appearance", "font_file", kindString, func(c *Config) any { return &c.Appearance.FontFile }},
	{"appearance", "font_size", kindInt, func(c *Config) any { return &c.Appearance.FontSize }},
	{"appearance", "text_color", kindString, func(c *Config) any { return &c.Appearance.TextColor }},
	{"appearance", "bg_color", kindString, func(c *Config) any { return &c.Appearance.BgColor }},
	{"appearance", "padding_x", kindInt, func(c *Config) any { return &c.Appearance.PaddingX }},
	{"appearance", "padding_y", kindInt, func(c *Config) any { return &c.Appearance.PaddingY }},
	{"appearance", "duration_ms", kindInt, func(c *Config) any { return &c.Appearance.DurationMs }},

	{"position", "position", kindString, func(c *Config) any { return &c.Position.Position }},
	{"position", "x_offset", kindInt, func(c *Config) any { return &c.Position.XOffset }},
	{"position", "y_offset", kindInt, func(c *Config) any { return &c.Position.YOffset }},

	{"capture", "poll_interval_ms", kindInt, func(c *Config) any { return &c.Capture.PollIntervalMs }},
	{"capture", "hotplug", kindBool, func(c *Config) any { return &c.Capture.Hotplug }},
	{"capture", "device_dir", kindString, func(c *Config) any { return &c.Capture.DeviceDir }},
	{"capture", "ready_message", kindString, func(c *Config) any { return &c.Capture.ReadyMessage }},

	{"control", "dbus", kindBool, func(c *Config) any { return &c.Control.DBus }},

	{"logging", "level", kindString, func(c *Config) any { return &c.Logging.Level }},
	{"logging", "format", kindString, func(c *Config) any { return &c.Logging.Format }},
	{"logging", "output", kindString, func(c *Config) any { return &c.Logging.Output }},
	{"logging", "file", kindString, func(c *Config) any { return &c.Logging.File }},
}

const glyphSection = "glyphs"

var keyIdent = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

func lookupField(section, key string) (field, bool) {
	for _, f := range fields {
		if f.section == section && f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// Load reads path and returns the settings with defaults filled in for
// anything missing or invalid. It never fails: an empty path, a missing
// file or an unparsable file all yield defaults plus diagnostics.
func Load(path string) (*Config, Diagnostics) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.ApplyEnvOverrides()
	}

	doc, err := readDocument(path)
	if err != nil {
		diags := Diagnostics{{Message: err.Error()}}
		return cfg, append(diags, cfg.ApplyEnvOverrides()...)
	}

	values, diags := coerce(doc)

	schemaDiags, err := validate(values)
	if err != nil {
		diags = append(diags, Diagnostic{Message: fmt.Sprintf("schema check skipped: %v", err)})
	}
	for _, d := range schemaDiags {
		delete(values[d.Section], d.Key)
		diags = append(diags, d)
	}

	apply(cfg, values)
	return cfg, append(diags, cfg.ApplyEnvOverrides()...)
}

// readDocument decodes path into section -> key -> value with lower-cased
// section and key names.
func readDocument(path string) (map[string]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ini", ".conf", "":
		return decodeINI(data)
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	doc := make(map[string]map[string]any, len(raw))
	for name, v := range raw {
		section, ok := v.(map[string]any)
		if !ok {
			doc[strings.ToLower(name)] = nil
			continue
		}
		keys := make(map[string]any, len(section))
		for k, val := range section {
			keys[strings.ToLower(k)] = val
		}
		doc[strings.ToLower(name)] = keys
	}
	return doc, nil
}

func decodeINI(data []byte) (map[string]map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:              true,
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("decode INI: %w", err)
	}

	doc := make(map[string]map[string]any)
	for _, section := range f.Sections() {
		keys := section.Keys()
		if len(keys) == 0 {
			continue
		}
		m := make(map[string]any, len(keys))
		for _, k := range keys {
			m[k.Name()] = k.String()
		}
		doc[section.Name()] = m
	}
	return doc, nil
}

// coerce converts raw values to their field types. The result holds only
// values that converted; everything else becomes a diagnostic.
func coerce(doc map[string]map[string]any) (map[string]map[string]any, Diagnostics) {
	var diags Diagnostics
	out := make(map[string]map[string]any)

	for _, section := range sortedKeys(doc) {
		keys := doc[section]
		if keys == nil {
			diags = append(diags, Diagnostic{Section: section, Message: "expected a section"})
			continue
		}
		if section == glyphSection {
			g, d := coerceGlyphs(keys)
			out[section] = g
			diags = append(diags, d...)
			continue
		}

		for _, key := range sortedKeys(keys) {
			raw := keys[key]
			f, ok := lookupField(section, key)
			if !ok {
				diags = append(diags, Diagnostic{Section: section, Key: key, Message: "unknown setting"})
				continue
			}
			v, ok := convert(raw, f.kind)
			if !ok {
				diags = append(diags, Diagnostic{
					Section: section,
					Key:     key,
					Value:   raw,
					Message: "expected " + f.kind.String(),
				})
				continue
			}
			if out[section] == nil {
				out[section] = make(map[string]any)
			}
			out[section][key] = v
		}
	}
	return out, diags
}

func coerceGlyphs(keys map[string]any) (map[string]any, Diagnostics) {
	var diags Diagnostics
	out := make(map[string]any, len(keys))

	for _, key := range sortedKeys(keys) {
		raw := keys[key]
		id := strings.ToUpper(key)
		if !keyIdent.MatchString(id) {
			diags = append(diags, Diagnostic{Section: glyphSection, Key: key, Message: "not a key identifier"})
			continue
		}
		s, ok := raw.(string)
		if !ok {
			diags = append(diags, Diagnostic{Section: glyphSection, Key: key, Value: raw, Message: "expected a string"})
			continue
		}
		g, err := glyph.ParseGlyph(s)
		if err != nil {
			diags = append(diags, Diagnostic{Section: glyphSection, Key: key, Value: raw, Message: err.Error()})
			continue
		}
		out[id] = g
	}
	return out, diags
}

func convert(raw any, k kind) (any, bool) {
	switch k {
	case kindString:
		s, ok := raw.(string)
		return s, ok

	case kindInt:
		switch v := raw.(type) {
		case int:
			return v, true
		case int64:
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, false
			}
			return int(v), true
		case float64:
			if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
				return nil, false
			}
			return int(v), true
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			return n, err == nil
		}
		return nil, false

	case kindBool:
		switch v := raw.(type) {
		case bool:
			return v, true
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "1", "true", "yes", "on":
				return true, true
			case "0", "false", "no", "off":
				return false, true
			}
		}
		return nil, false
	}
	return nil, false
}

func apply(cfg *Config, values map[string]map[string]any) {
	for section, keys := range values {
		if section == glyphSection {
			for id, g := range keys {
				cfg.Glyphs[id] = g.(string)
			}
			continue
		}
		for key, v := range keys {
			f, ok := lookupField(section, key)
			if !ok {
				continue
			}
			switch p := f.ref(cfg).(type) {
			case *string:
				*p = v.(string)
			case *int:
				*p = v.(int)
			case *bool:
				*p = v.(bool)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
