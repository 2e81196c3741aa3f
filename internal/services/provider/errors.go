// File: internal/services/provider/errors.go
package provider

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeUpstream    ErrorType = "UPSTREAM"
	ErrTypeUnsupported ErrorType = "UNSUPPORTED"
)

type ProviderError struct {
	Type      ErrorType
	Provider  string
	Operation string
	Message   string
	Cause     error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s error in %s: %s (caused by: %v)",
			e.Provider, e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s error in %s: %s", e.Provider, e.Type, e.Operation, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

func NewValidationError(providerKey, operation, msg string) *ProviderError {
	return &ProviderError{Type: ErrTypeValidation, Provider: providerKey, Operation: operation, Message: msg}
}

func NewUpstreamError(providerKey, operation, msg string, cause error) *ProviderError {
	return &ProviderError{Type: ErrTypeUpstream, Provider: providerKey, Operation: operation, Message: msg, Cause: cause}
}

func NewUnsupportedError(providerKey, operation, msg string) *ProviderError {
	return &ProviderError{Type: ErrTypeUnsupported, Provider: providerKey, Operation: operation, Message: msg}
}

func NewConfigError(providerKey, msg string) *ProviderError {
	return &ProviderError{Type: ErrTypeConfig, Provider: providerKey, Operation: "config", Message: msg}
}

// IsType reports whether err is a ProviderError of the given type.
func IsType(err error, t ErrorType) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Type == t
	}
	return false
}
