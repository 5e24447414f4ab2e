// Package errors provides sentinel errors and error types for uci-analysis.
// Sentinels are checked with errors.Is(); the structured types carry the
// telemetry token or engine operation that failed and support errors.As().
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
var (
	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN string")

	// ErrIllegalMove indicates a move that cannot be played in the position.
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvalidConfig indicates invalid configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidSearch indicates a stopping criterion with a non-positive budget.
	ErrInvalidSearch = errors.New("invalid search limit")

	// ErrMalformedInfo indicates an engine info line with a missing or unparseable field.
	ErrMalformedInfo = errors.New("malformed info line")

	// ErrNoPV indicates an engine info line without a principal variation.
	ErrNoPV = errors.New("info line has no pv")

	// ErrEngineStart indicates the engine process could not be started.
	ErrEngineStart = errors.New("engine failed to start")

	// ErrEngineClosed indicates the engine transport is no longer usable.
	ErrEngineClosed = errors.New("engine closed")
)

// InfoError describes why a single engine info line was rejected.
type InfoError struct {
	Err   error  // The underlying error
	Field string // Info field being parsed (e.g. "nodes", "score")
	Token string // Offending token, empty when the field was absent
}

// Error returns the field, token and cause.
func (e *InfoError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field %s", e.Field))
	}
	if e.Token != "" {
		parts = append(parts, fmt.Sprintf("token %q", e.Token))
	}
	if e.Err != nil {
		if len(parts) > 0 {
			return fmt.Sprintf("%s: %v", strings.Join(parts, ", "), e.Err)
		}
		return e.Err.Error()
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return "info error"
}

// Unwrap returns the underlying error.
func (e *InfoError) Unwrap() error {
	return e.Err
}

// EngineError wraps a transport failure with the operation and engine path.
type EngineError struct {
	Err  error  // The underlying error
	Op   string // "start", "send", "read", "close"
	Path string // Engine executable, if known
}

// Error returns a formatted error message including all available context.
func (e *EngineError) Error() string {
	msg := "engine"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error, enabling errors.Is() and errors.As()
// to work through the EngineError wrapper.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Wrap adds context to an error while preserving the underlying error
// for inspection with errors.Is() and errors.As().
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf adds formatted context to an error while preserving the underlying
// error for inspection with errors.Is() and errors.As().
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
