package types

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks problems in the scenario found before tracking
	ErrConfiguration = errors.New("configuration error")
	// ErrUnsupportedScore marks a score kind the evaluator does not implement
	ErrUnsupportedScore = errors.New("unsupported score")
)

// ConfigError identifies the mesh, filter, tally or setting at fault.
type ConfigError struct {
	Kind string // mesh, filter, tally, settings
	ID   int    // zero when the problem is not tied to one record
	Msg  string
	Err  error // ErrConfiguration or ErrUnsupportedScore
}

func NewConfigError(kind string, id int, format string, args ...any) *ConfigError {
	return &ConfigError{
		Kind: kind,
		ID:   id,
		Msg:  fmt.Sprintf(format, args...),
		Err:  ErrConfiguration,
	}
}

func (ce *ConfigError) Error() string {
	if ce.ID == 0 {
		return fmt.Sprintf("%s: %s: %s", ce.Err, ce.Kind, ce.Msg)
	}
	return fmt.Sprintf("%s: %s %d: %s", ce.Err, ce.Kind, ce.ID, ce.Msg)
}

func (ce *ConfigError) Unwrap() error { return ce.Err }
