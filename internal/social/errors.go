package social

import (
	"errors"
	"fmt"
)

var (
	ErrProviderDisabled = errors.New("provider is disabled")
	ErrDefaultRole      = errors.New("default role not found")
)

// ConfigError reports a provider that cannot be used as configured:
// disabled, absent from the configuration store or without an adapter.
type ConfigError struct {
	Provider string
	Cause    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q: %v", e.Provider, e.Cause)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
