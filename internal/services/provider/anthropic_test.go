// File: internal/services/provider/anthropic_test.go
package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testConfig(baseURL string) *Config {
	return &Config{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		Timeout:         5 * time.Second,
		MaxOutputTokens: 4096,
		Temperature:     0.7,
	}
}

func newTestAnthropic(t *testing.T, handler http.Handler) (*AnthropicClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewAnthropicClient(testConfig(server.URL), &noopLogger{})
	if err != nil {
		t.Fatalf("NewAnthropicClient: %v", err)
	}
	return client, server
}

type noopLogger struct{}

func (noopLogger) Info(msg string, kv ...interface{})  {}
func (noopLogger) Error(msg string, kv ...interface{}) {}
func (noopLogger) Debug(msg string, kv ...interface{}) {}
func (noopLogger) Warn(msg string, kv ...interface{})  {}

func TestAnthropicClientRequiresConfig(t *testing.T) {
	_, err := NewAnthropicClient(&Config{}, noopLogger{})
	if err == nil {
		t.Fatal("expected config error")
	}
	if !IsType(err, ErrTypeConfig) {
		t.Errorf("got %v, want CONFIG error", err)
	}
}

func TestAnthropicListModelsFallsBack(t *testing.T) {
	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != len(AnthropicFallbackModels) {
		t.Fatalf("got %d models, want fallback catalog of %d", len(models), len(AnthropicFallbackModels))
	}
	if models[0].ID != AnthropicFallbackModels[0].ID {
		t.Errorf("first model = %q", models[0].ID)
	}
}

func TestAnthropicListModelsFromUpstream(t *testing.T) {
	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing version header")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{
				{"id": "claude-3-5-sonnet-20241022", "display_name": "Claude 3.5 Sonnet"},
			},
		})
	}))

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || models[0].Name != "Claude 3.5 Sonnet" {
		t.Errorf("models = %+v", models)
	}
}

func TestAnthropicModelLimitsNotFound(t *testing.T) {
	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetModelLimits(context.Background(), "claude-nonexistent")
	if !IsType(err, ErrTypeNotFound) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
}

func TestAnthropicModelLimitsDegradesToDefaults(t *testing.T) {
	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	limits, err := client.GetModelLimits(context.Background(), "claude-3-5-sonnet-20241022")
	if err != nil {
		t.Fatalf("GetModelLimits: %v", err)
	}
	if limits.MaxTokens != 8192 || limits.ContextWindow != 200000 {
		t.Errorf("limits = %+v", limits)
	}
}

func TestAnthropicSendMessage(t *testing.T) {
	var captured anthropicRequest
	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/messages":
			json.NewDecoder(r.Body).Decode(&captured)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    "msg_123",
				"model": "claude-3-sonnet-20240229",
				"content": []map[string]string{
					{"type": "text", "text": "Hi there"},
				},
			})
		default:
			// Model detail probe for the token ceiling.
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "claude-3-sonnet-20240229"})
		}
	}))

	result, err := client.SendMessage(context.Background(), SendRequest{
		Prompt:  "Hello",
		ModelID: "claude-3-sonnet-20240229",
		History: []HistoryTurn{
			{Role: RoleUser, Content: "earlier question"},
			{Role: RoleAssistant, Content: "earlier answer"},
		},
		ContextSummary: "they were discussing Go",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Content != "Hi there" || result.ResponseID != "msg_123" {
		t.Errorf("result = %+v", result)
	}

	if captured.System != "they were discussing Go" {
		t.Errorf("summary not on system field: %q", captured.System)
	}
	if len(captured.Messages) != 3 {
		t.Fatalf("got %d wire messages, want 3", len(captured.Messages))
	}
	if captured.Messages[2].Role != "user" {
		t.Errorf("last message role = %q", captured.Messages[2].Role)
	}
	if captured.MaxTokens <= 0 {
		t.Errorf("max_tokens not set")
	}
}

func TestAnthropicSendMessageUpstreamError(t *testing.T) {
	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/messages" {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))

	_, err := client.SendMessage(context.Background(), SendRequest{Prompt: "hi", ModelID: "claude-3-haiku-20240307"})
	if !IsType(err, ErrTypeUpstream) {
		t.Fatalf("got %v, want UPSTREAM", err)
	}
}

func TestAnthropicAttachmentValidationBeforeUpstream(t *testing.T) {
	calls := 0
	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/messages" {
			calls++
		}
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))

	_, err := client.SendMessage(context.Background(), SendRequest{
		Prompt:         "look at this",
		ModelID:        "claude-3-sonnet-20240229",
		AttachmentPath: "/nonexistent/file.png",
	})
	if !IsType(err, ErrTypeValidation) {
		t.Fatalf("got %v, want VALIDATION", err)
	}
	if calls != 0 {
		t.Errorf("message endpoint hit %d times for an invalid attachment", calls)
	}
}

func TestAnthropicAttachmentUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.xyz")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))

	_, err := client.SendMessage(context.Background(), SendRequest{
		Prompt:         "see file",
		ModelID:        "claude-3-sonnet-20240229",
		AttachmentPath: path,
	})
	if !IsType(err, ErrTypeValidation) {
		t.Fatalf("got %v, want VALIDATION", err)
	}
}

func TestAnthropicRetryWithoutAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, []byte("fakepng"), 0o644); err != nil {
		t.Fatal(err)
	}

	var sendCalls int
	client, _ := newTestAnthropic(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			json.NewEncoder(w).Encode(map[string]interface{}{})
			return
		}
		sendCalls++
		if sendCalls == 1 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"type": "invalid_request_error", "message": "Unrecognized request argument supplied: source"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "msg_retry",
			"model":   "claude-3-sonnet-20240229",
			"content": []map[string]string{{"type": "text", "text": "I cannot see the attachment."}},
		})
	}))

	result, err := client.SendMessage(context.Background(), SendRequest{
		Prompt:         "what is in this image",
		ModelID:        "claude-3-sonnet-20240229",
		AttachmentPath: path,
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if sendCalls != 2 {
		t.Fatalf("got %d send calls, want 2", sendCalls)
	}
	if result.ResponseID != "msg_retry" {
		t.Errorf("result = %+v", result)
	}
}

func TestAnthropicUploadUnsupported(t *testing.T) {
	client, _ := newTestAnthropic(t, http.NotFoundHandler())

	_, err := client.UploadFile(context.Background(), "whatever.png", "assistants")
	if !IsType(err, ErrTypeUnsupported) {
		t.Fatalf("got %v, want UNSUPPORTED", err)
	}
}
