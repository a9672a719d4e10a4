package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var formatByExt = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".json": FormatJSON,
}

// FormatOf reports the format implied by path's extension, ignoring case.
func FormatOf(path string) (Format, bool) {
	f, ok := formatByExt[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// FromFile reads path and parses it in the format its extension names.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Config, error) {
	format, ok := FormatOf(path)
	if !ok {
		return Config{}, fmt.Errorf("unsupported config file extension: %s", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes data as a top-level mapping in the given format.
func Parse(data []byte, format Format) (Config, error) {
	var (
		m   map[string]any
		err error
	)
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	case FormatJSON:
		err = json.Unmarshal(data, &m)
	default:
		return Config{}, fmt.Errorf("unknown config format %q", format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", format, err)
	}
	return New(m), nil
}

// FromYAML is Parse(data, FormatYAML).
func FromYAML(data []byte) (Config, error) { return Parse(data, FormatYAML) }

// FromJSON is Parse(data, FormatJSON).
func FromJSON(data []byte) (Config, error) { return Parse(data, FormatJSON) }
