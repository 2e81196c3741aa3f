// File: internal/services/chat/errors_test.go
package chat

import (
	"errors"
	"net/http"
	"testing"

	"github.com/minhle/go-chatproxy/internal/services/provider"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		errType ErrorType
		want    int
	}{
		{ErrorTypeNotFound, http.StatusNotFound},
		{ErrorTypeValidation, http.StatusBadRequest},
		{ErrorTypeUpstream, http.StatusBadGateway},
		{ErrorTypeUnsupported, http.StatusNotImplemented},
		{ErrorTypeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := &ChatError{Type: tc.errType, Operation: "op", Message: "m"}
		if got := e.HTTPStatus(); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.errType, got, tc.want)
		}
	}
}

func TestFromProviderErrorPreservesTypeAndCause(t *testing.T) {
	pe := provider.NewUnsupportedError(provider.KeyAnthropic, "upload_file", "no uploads")

	ce := FromProviderError("upload_file", pe)
	if ce.Type != ErrorTypeUnsupported {
		t.Errorf("type = %q, want UNSUPPORTED", ce.Type)
	}
	if !errors.Is(ce, pe) {
		t.Error("cause chain broken")
	}

	var unwrapped *provider.ProviderError
	if !errors.As(ce, &unwrapped) {
		t.Error("cannot recover the provider error")
	}
}

func TestFromProviderErrorPlainError(t *testing.T) {
	ce := FromProviderError("send_message", errors.New("connection reset"))
	if ce.Type != ErrorTypeUpstream {
		t.Errorf("type = %q, want UPSTREAM", ce.Type)
	}
}
