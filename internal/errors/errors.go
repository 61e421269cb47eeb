package errors

import (
	"fmt"
	"sync"
	"time"
)

// DiscoveryError records a theme directory that was skipped during a scan.
type DiscoveryError struct {
	Path      string
	Err       error
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (de *DiscoveryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", de.Path, de.Severity, de.Err)
}

// Unwrap returns the underlying error.
func (de *DiscoveryError) Unwrap() error {
	return de.Err
}

// ErrorCollector collects per-item failures that were contained rather than
// propagated.
type ErrorCollector struct {
	items []DiscoveryError
	mutex sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		items: make([]DiscoveryError, 0),
	}
}

// Add records a skipped path.
func (ec *ErrorCollector) Add(path string, err error, severity ErrorSeverity) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.items = append(ec.items, DiscoveryError{
		Path:      path,
		Err:       err,
		Severity:  severity,
		Timestamp: time.Now(),
	})
}

// GetErrors returns a copy of all collected errors
func (ec *ErrorCollector) GetErrors() []DiscoveryError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]DiscoveryError, len(ec.items))
	copy(result, ec.items)
	return result
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.items) > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.items = ec.items[:0]
}

// GetErrorsByPath returns errors recorded for a specific path
func (ec *ErrorCollector) GetErrorsByPath(path string) []DiscoveryError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var found []DiscoveryError
	for _, item := range ec.items {
		if item.Path == path {
			found = append(found, item)
		}
	}
	return found
}
