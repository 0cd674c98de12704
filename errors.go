package poststates

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a registration validation failure for stable testing.
type ErrorCode string

const (
	// CodeEmptyConfiguration reports a bulk registration with no entries.
	CodeEmptyConfiguration ErrorCode = "EMPTY_CONFIGURATION"
	// CodeNoValidEntries reports a bulk registration where every pair was
	// dropped by key/label validation.
	CodeNoValidEntries ErrorCode = "NO_VALID_ENTRIES"
	// CodeInvalidKeyOrLabel reports a single-entry registration with an
	// empty key or label.
	CodeInvalidKeyOrLabel ErrorCode = "INVALID_KEY_OR_LABEL"
	// CodeInvalidResolver reports a nil or unbuildable resolver.
	CodeInvalidResolver ErrorCode = "INVALID_RESOLVER"
)

// ConfigError is the structured error returned across the registration
// boundary. It carries a stable code alongside the human-readable message.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("poststates: [%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("poststates: [%s] %s", e.Code, e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *ConfigError carrying the same code, so callers can test
// against &ConfigError{Code: CodeNoValidEntries} with errors.Is.
func (e *ConfigError) Is(target error) bool {
	var other *ConfigError
	if !errors.As(target, &other) {
		return false
	}
	return e != nil && e.Code == other.Code
}

func newConfigError(code ErrorCode, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func wrapConfigError(code ErrorCode, err error, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// CodeOf extracts the ErrorCode from err, or "" when err carries none.
func CodeOf(err error) ErrorCode {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	return ""
}

// ResolveError captures resolver metadata alongside the originating error.
// Resolve errors never cross the render boundary; the matcher swallows them
// per entry and surfaces them only through match logging.
type ResolveError struct {
	Engine string
	Key    string
	Err    error
}

func (e *ResolveError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("poststates: %s resolver key=%q: %v", e.Engine, e.Key, e.Err)
}

func (e *ResolveError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapResolveError(engine, key string, err error) error {
	if err == nil {
		return nil
	}

	var resErr *ResolveError
	if errors.As(err, &resErr) {
		if resErr.Engine == "" {
			resErr.Engine = engine
		}
		if resErr.Key == "" {
			resErr.Key = key
		}
		return resErr
	}

	return &ResolveError{
		Engine: engine,
		Key:    key,
		Err:    err,
	}
}
