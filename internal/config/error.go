package config

import (
	"fmt"
	"strings"
)

// ConfigError reports every problem found while loading a config file,
// so the operator can fix them in one pass.
type ConfigError struct {
	Path    string
	Missing []string // ${VAR} references with no value
	Errors  []string // failed validation rules
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "invalid config %s", e.Path)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "\nunset environment variables: %s", strings.Join(e.Missing, ", "))
	}
	for _, msg := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", msg)
	}
	return b.String()
}

// HasErrors reports whether loading should fail.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
