package cli

import (
	"errors"
	"fmt"
	"testing"

	"mercator-hq/routecost/pkg/calcerr"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "server.listen_address",
		Message: "missing required field",
	}

	expected := "config error in server.listen_address: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	if got := NewConfigError("", "boom").Error(); got != "config error: boom" {
		t.Errorf("Error() without field = %q", got)
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Field = %q, want %q", err.Field, "field")
	}
	if err.Message != "message" {
		t.Errorf("Message = %q, want %q", err.Message, "message")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("serve", underlyingErr)

	expected := "command serve failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitFailure},
		{"validation", calcerr.NewValidationError("input_tokens", "negative"), ExitInvalidInput},
		{"wrapped validation", NewCommandError("estimate", calcerr.NewValidationError("x", "bad")), ExitInvalidInput},
		{"not found", fmt.Errorf("lookup: %w", calcerr.NewModelNotFoundError("m")), ExitModelNotFound},
		{"configuration", calcerr.NewConfigurationError("grid", "bad"), ExitConfiguration},
		{"config load", NewConfigError("", "failed to load"), ExitConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
