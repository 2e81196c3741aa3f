// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/minhle/go-chatproxy/internal/services/provider"
)

// ErrorType categorizes conversation failures.
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeUpstream    ErrorType = "UPSTREAM"
	ErrorTypeUnsupported ErrorType = "UNSUPPORTED"
	ErrorTypeInternal    ErrorType = "INTERNAL"
)

// ChatError is the error surface handlers see. Every service operation
// returns either nil or a *ChatError.
type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    uint
	Cause     error
}

func (e *ChatError) Error() string {
	if e.ChatID != 0 {
		return fmt.Sprintf("chat error [%s] in %s for chat %d: %s", e.Type, e.Operation, e.ChatID, e.Message)
	}
	return fmt.Sprintf("chat error [%s] in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error type onto a response status code.
func (e *ChatError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	case ErrorTypeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func NewNotFoundError(operation, message string, chatID uint) *ChatError {
	return &ChatError{Type: ErrorTypeNotFound, Operation: operation, Message: message, ChatID: chatID}
}

func NewValidationError(operation, message string) *ChatError {
	return &ChatError{Type: ErrorTypeValidation, Operation: operation, Message: message}
}

func NewUpstreamError(operation, message string, cause error) *ChatError {
	return &ChatError{Type: ErrorTypeUpstream, Operation: operation, Message: message, Cause: cause}
}

func NewInternalError(operation, message string, cause error) *ChatError {
	return &ChatError{Type: ErrorTypeInternal, Operation: operation, Message: message, Cause: cause}
}

// FromProviderError converts a provider failure into the service's error
// vocabulary, preserving the cause chain.
func FromProviderError(operation string, err error) *ChatError {
	var pe *provider.ProviderError
	if !errors.As(err, &pe) {
		return NewUpstreamError(operation, err.Error(), err)
	}

	ce := &ChatError{Operation: operation, Message: pe.Message, Cause: err}
	switch pe.Type {
	case provider.ErrTypeNotFound:
		ce.Type = ErrorTypeNotFound
	case provider.ErrTypeValidation:
		ce.Type = ErrorTypeValidation
	case provider.ErrTypeUnsupported:
		ce.Type = ErrorTypeUnsupported
	case provider.ErrTypeConfig:
		ce.Type = ErrorTypeInternal
	default:
		ce.Type = ErrorTypeUpstream
	}
	return ce
}
