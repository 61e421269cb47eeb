package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeNaming   ErrorType = "naming"
	ErrorTypeConflict ErrorType = "conflict"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeOrdering ErrorType = "ordering"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeInvalidThemeName = "ERR_INVALID_THEME_NAME"
	ErrCodeThemeConflict    = "ERR_THEME_CONFLICT"
	ErrCodeThemeNotFound    = "ERR_THEME_NOT_FOUND"
	ErrCodeNotBootstrapped  = "ERR_NOT_BOOTSTRAPPED"
	ErrCodePhaseOrder       = "ERR_PHASE_ORDER"
	ErrCodeInvalidPinFile   = "ERR_INVALID_PIN_FILE"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeScanFailed       = "ERR_SCAN_FAILED"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// ThemeError is a structured error type with context.
type ThemeError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
	Theme   string
	Path    string
}

// Error implements the error interface.
func (e *ThemeError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Theme != "" {
		parts = append(parts, "theme:"+e.Theme)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ThemeError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ThemeError) Is(target error) bool {
	var t *ThemeError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ThemeError) WithContext(key string, value interface{}) *ThemeError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithTheme adds theme context.
func (e *ThemeError) WithTheme(name string) *ThemeError {
	e.Theme = name

	return e
}

// WithPath adds filesystem location information.
func (e *ThemeError) WithPath(path string) *ThemeError {
	e.Path = path

	return e
}

// NewNamingError creates a theme naming error.
func NewNamingError(code, message string) *ThemeError {
	return &ThemeError{
		Type:    ErrorTypeNaming,
		Code:    code,
		Message: message,
	}
}

// NewConflictError creates a namespace conflict error.
func NewConflictError(message string) *ThemeError {
	return &ThemeError{
		Type:    ErrorTypeConflict,
		Code:    ErrCodeThemeConflict,
		Message: message,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *ThemeError {
	return &ThemeError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *ThemeError {
	return &ThemeError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewOrderingError reports a lifecycle step invoked out of order.
func NewOrderingError(code, message string) *ThemeError {
	return &ThemeError{
		Type:    ErrorTypeOrdering,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *ThemeError {
	return &ThemeError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrThemeNotFound creates a lookup failure for a theme name.
func ErrThemeNotFound(name string) *ThemeError {
	return &ThemeError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeThemeNotFound,
		Message: "theme not found: " + name,
		Theme:   name,
	}
}

// ErrNotBootstrapped reports use of a theme before its bootstrap ran.
func ErrNotBootstrapped(name string) *ThemeError {
	return NewOrderingError(ErrCodeNotBootstrapped, "theme has not been bootstrapped").
		WithTheme(name)
}

// Wrap wraps an error with additional context, creating a ThemeError if the
// input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *ThemeError {
	if err == nil {
		return nil
	}

	var te *ThemeError
	if errors.As(err, &te) {
		return &ThemeError{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   te,
			Context: te.Context,
			Theme:   te.Theme,
			Path:    te.Path,
		}
	}

	return &ThemeError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsConflict reports whether err is, or wraps, a namespace conflict.
func IsConflict(err error) bool {
	var ce *ThemeConflictError
	if errors.As(err, &ce) {
		return true
	}

	var te *ThemeError
	if errors.As(err, &te) {
		return te.Type == ErrorTypeConflict
	}

	return false
}

// IsInvalidName reports whether err is, or wraps, an invalid theme name.
func IsInvalidName(err error) bool {
	var ne *InvalidThemeNameError
	return errors.As(err, &ne)
}
