package optimizer

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the sentinel wrapped by every ConfigError, so
// callers can test with errors.Is regardless of the specific message.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a problem detected at Problem.Build or
// ParamsBundle.Validate time — never during a solve. NewSolver does not
// validate its SolverParams and returns no error. These are fatal: the
// caller must fix the input and retry, per spec.md §7.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
