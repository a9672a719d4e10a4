package config

import (
	"fmt"
	"regexp"
	"strings"
)

// refPattern matches ${NAME} where NAME is alphanumeric or underscore.
var refPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// UndefinedVariableError lists references that had no value.
type UndefinedVariableError struct {
	Names []string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

// Expand returns a copy of c with every ${NAME} in string values replaced
// from vars, descending into sections and lists. Unresolved references are
// left in place and reported together in an *UndefinedVariableError; the
// returned Config is usable either way.
//
// Example:
//
//	cfg, err := cfg.Expand(map[string]string{"HOME": os.Getenv("HOME")})
func (c Config) Expand(vars map[string]string) (Config, error) {
	var missing []string
	out := expandValue(c.data, vars, &missing).(map[string]any)
	if len(missing) > 0 {
		return New(out), &UndefinedVariableError{Names: missing}
	}
	return New(out), nil
}

func expandValue(v any, vars map[string]string, missing *[]string) any {
	switch val := v.(type) {
	case string:
		return refPattern.ReplaceAllStringFunc(val, func(match string) string {
			name := match[2 : len(match)-1]
			if s, ok := vars[name]; ok {
				return s
			}
			*missing = append(*missing, name)
			return match
		})
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = expandValue(item, vars, missing)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = expandValue(item, vars, missing)
		}
		return s
	default:
		return v
	}
}
