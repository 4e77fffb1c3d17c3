package narrativex

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupported is returned when an engine cannot perform a requested operation,
	// e.g. Replay on a continuous-clock timeline.
	ErrUnsupported = errors.New("operation not supported by engine")

	// ErrUnknownStage is returned when a stage or step id does not exist.
	ErrUnknownStage = errors.New("unknown stage")
)

// ConfigError reports a timeline or chain that must be rejected at construction time.
// Index is the offending stage/step position, or -1 when the whole list is at fault.
type ConfigError struct {
	Component string
	Index     int
	Reason    string
}

func (e *ConfigError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Component, e.Reason)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Component, e.Index, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func configErr(component string, index int, format string, args ...any) error {
	return &ConfigError{Component: component, Index: index, Reason: fmt.Sprintf(format, args...)}
}
