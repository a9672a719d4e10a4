package config

// Config is a read-only view over decoded configuration. Accessors never
// fail: a missing key or a value of the wrong type yields the caller's
// default.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map behaves as an empty configuration.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// typed returns the value under key if it has type T.
func typed[T any](c Config, key string, def T) T {
	if v, ok := c.data[key].(T); ok {
		return v
	}
	return def
}

// String returns the string under key, or def.
func (c Config) String(key, def string) string { return typed(c, key, def) }

// Bool returns the bool under key, or def.
func (c Config) Bool(key string, def bool) bool { return typed(c, key, def) }

// Int returns the integer under key, or def. YAML yields int, JSON yields
// float64; a float is accepted only when it has no fractional part.
func (c Config) Int(key string, def int) int {
	switch n := c.data[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		if i := int(n); float64(i) == n {
			return i
		}
	}
	return def
}

// Float returns the number under key as float64, or def.
func (c Config) Float(key string, def float64) float64 {
	switch n := c.data[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// Section returns the mapping under key. Anything else, including a
// missing key, yields an empty Config so lookups can be chained.
func (c Config) Section(key string) Config {
	if m, ok := c.data[key].(map[string]any); ok {
		return New(m)
	}
	return New(nil)
}

// Has reports whether key is present, whatever its value.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Raw exposes the underlying map. Callers must not modify it.
func (c Config) Raw() map[string]any {
	return c.data
}
