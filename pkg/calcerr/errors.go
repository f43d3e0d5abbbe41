package calcerr

import (
	"errors"
	"fmt"
)

// ValidationError reports an input value outside its allowed domain.
type ValidationError struct {
	Field   string // Offending field ("input_tokens", "routers[2].fee_pct", ...)
	Message string // Human readable reason
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error [field=%s]: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// ModelNotFoundError reports a catalog lookup miss.
type ModelNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q not found in catalog", e.ID)
}

// NewModelNotFoundError creates a new ModelNotFoundError.
func NewModelNotFoundError(id string) *ModelNotFoundError {
	return &ModelNotFoundError{ID: id}
}

// ConfigurationError reports an invalid environmental assumption.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error [field=%s]: %s", e.Field, e.Message)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsModelNotFound reports whether err wraps a *ModelNotFoundError.
func IsModelNotFound(err error) bool {
	var target *ModelNotFoundError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err wraps a *ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
