package errors

import "fmt"

// InvalidThemeNameError is returned when a theme directory's base name
// normalizes to an empty slug. Discovery skips such directories.
type InvalidThemeNameError struct {
	Path string
	Base string
}

// Error implements the error interface.
func (e *InvalidThemeNameError) Error() string {
	return fmt.Sprintf("[%s] %s: directory name %q does not produce a theme name",
		ErrCodeInvalidThemeName, e.Path, e.Base)
}

// ToThemeError converts the naming failure to a ThemeError.
func (e *InvalidThemeNameError) ToThemeError() *ThemeError {
	return &ThemeError{
		Type:    ErrorTypeNaming,
		Code:    ErrCodeInvalidThemeName,
		Message: "invalid theme name " + fmt.Sprintf("%q", e.Base),
		Path:    e.Path,
		Cause:   e,
	}
}

// ThemeConflictError is returned when two distinct theme directories resolve
// to the same namespace. It is fatal: the themes are never merged.
type ThemeConflictError struct {
	Namespace string
	Existing  string
	Incoming  string
}

// Error implements the error interface.
func (e *ThemeConflictError) Error() string {
	return fmt.Sprintf("[%s] namespace %s is already owned by %s, cannot bootstrap %s",
		ErrCodeThemeConflict, e.Namespace, e.Existing, e.Incoming)
}

// ToThemeError converts the conflict to a ThemeError.
func (e *ThemeConflictError) ToThemeError() *ThemeError {
	te := NewConflictError("namespace " + e.Namespace + " is already owned").
		WithPath(e.Incoming).
		WithContext("existing", e.Existing)
	te.Cause = e
	return te
}
