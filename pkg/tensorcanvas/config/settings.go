package config

import (
	"log/slog"
	"strings"
)

// Settings is the typed view of a tensorcanvas configuration file.
//
//	canvas:
//	  width: 1024
//	  height: 768
//	node:
//	  width: 96
//	  height: 48
//	  port_radius: 6
//	variable:
//	  rows: 2
//	  cols: 2
//	values:
//	  dsn: ":memory:"
//	log_level: info
type Settings struct {
	CanvasWidth  int
	CanvasHeight int
	NodeWidth    float64
	NodeHeight   float64
	PortRadius   float64
	VariableRows int
	VariableCols int
	// ValueDSN selects the value store. Empty keeps values in memory.
	ValueDSN string
	LogLevel slog.Level
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		CanvasWidth:  1024,
		CanvasHeight: 768,
		NodeWidth:    96,
		NodeHeight:   48,
		PortRadius:   6,
		VariableRows: 2,
		VariableCols: 2,
		LogLevel:     slog.LevelInfo,
	}
}

// Settings extracts typed settings, falling back to DefaultSettings for
// anything missing or malformed. Non-positive sizes are ignored.
func (c Config) Settings() Settings {
	s := DefaultSettings()

	canvas := c.Section("canvas")
	s.CanvasWidth = positiveInt(canvas.Int("width", s.CanvasWidth), s.CanvasWidth)
	s.CanvasHeight = positiveInt(canvas.Int("height", s.CanvasHeight), s.CanvasHeight)

	node := c.Section("node")
	s.NodeWidth = positiveFloat(node.Float("width", s.NodeWidth), s.NodeWidth)
	s.NodeHeight = positiveFloat(node.Float("height", s.NodeHeight), s.NodeHeight)
	s.PortRadius = positiveFloat(node.Float("port_radius", s.PortRadius), s.PortRadius)

	variable := c.Section("variable")
	s.VariableRows = positiveInt(variable.Int("rows", s.VariableRows), s.VariableRows)
	s.VariableCols = positiveInt(variable.Int("cols", s.VariableCols), s.VariableCols)

	s.ValueDSN = c.Section("values").String("dsn", s.ValueDSN)
	s.LogLevel = parseLevel(c.String("log_level", ""), s.LogLevel)
	return s
}

func positiveInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func positiveFloat(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}

func parseLevel(name string, fallback slog.Level) slog.Level {
	if name == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return fallback
	}
	return level
}
