package config

import (
	"errors"
	"fmt"
)

// ConfigError marks a configuration problem (missing file, bad syntax,
// schema violation) as opposed to a transient I/O failure.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
