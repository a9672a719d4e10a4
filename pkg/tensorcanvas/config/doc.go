/*
Package config loads tensorcanvas configuration from YAML or JSON.

# Overview

Config wraps a map[string]any and provides typed accessor methods that
return a default when a key is missing or has the wrong type. Settings
is the typed view the examples and host applications consume.

# Basic Usage

	cfg, err := config.FromFile("canvas.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	s := cfg.Settings()
	lay := layout.Layout{
	    NodeSize:   gg.Pt(s.NodeWidth, s.NodeHeight),
	    PortRadius: s.PortRadius,
	}

Sections nest:

	radius := cfg.Section("node").Float("port_radius", 6)

# Variable Expansion

Expand substitutes ${NAME} references in string values, which lets a
file point the value store somewhere relative to the environment:

	values:
	  dsn: ${HOME}/.tensorcanvas/values.db

# Type Coercion

  - Int accepts int, int64, uint64 and whole float64 values
  - Float accepts float64, int and int64

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
