// File: internal/services/provider/router.go
package provider

import (
	"context"
	"strings"
)

// Display names shown to the frontend.
const (
	DisplayAnthropic = "Claude"
	DisplayOpenAI    = "GPT"
)

// Router resolves display provider names ("Claude", "GPT") or canonical
// keys to the concrete client. Everything downstream of the router is
// provider-agnostic; no caller ever branches on the provider again.
type Router struct {
	anthropic *AnthropicClient
	openai    *OpenAIClient
	logger    Logger
}

func NewRouter(anthropic *AnthropicClient, openai *OpenAIClient, logger Logger) (*Router, error) {
	if anthropic == nil || openai == nil {
		return nil, NewConfigError("router", "both provider clients are required")
	}
	return &Router{anthropic: anthropic, openai: openai, logger: logger}, nil
}

// ResolveKey normalizes a display name or canonical key, inferring the
// provider from the model id when none is given: model ids containing
// "gpt" route to OpenAI, everything else to Anthropic.
func ResolveKey(providerName, modelID string) string {
	switch providerName {
	case DisplayOpenAI, KeyOpenAI:
		return KeyOpenAI
	case DisplayAnthropic, KeyAnthropic:
		return KeyAnthropic
	}
	if strings.Contains(strings.ToLower(modelID), "gpt") {
		return KeyOpenAI
	}
	return KeyAnthropic
}

// DisplayName maps a canonical key back to the user-facing name.
func DisplayName(key string) string {
	if key == KeyOpenAI {
		return DisplayOpenAI
	}
	return DisplayAnthropic
}

func (r *Router) client(key string) Client {
	if key == KeyOpenAI {
		return r.openai
	}
	return r.anthropic
}

// Models returns the union of all providers' catalogs, each entry tagged
// with its display provider. Per-client fallbacks mean this never fails
// just because one catalog endpoint is down.
func (r *Router) Models(ctx context.Context) ([]ModelInfo, error) {
	anthropicModels, err := r.anthropic.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	openaiModels, err := r.openai.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]ModelInfo, 0, len(anthropicModels)+len(openaiModels))
	for _, m := range anthropicModels {
		m.Provider = DisplayAnthropic
		models = append(models, m)
	}
	for _, m := range openaiModels {
		m.Provider = DisplayOpenAI
		models = append(models, m)
	}
	return models, nil
}

// ModelLimits resolves the provider and forwards the limits lookup.
func (r *Router) ModelLimits(ctx context.Context, modelID, providerName string) (ModelLimits, error) {
	key := ResolveKey(providerName, modelID)
	return r.client(key).GetModelLimits(ctx, modelID)
}

// Send dispatches a message to the resolved provider and returns the
// canonical key actually used alongside the result.
func (r *Router) Send(ctx context.Context, providerName string, req SendRequest) (SendResult, string, error) {
	key := ResolveKey(providerName, req.ModelID)
	r.logger.Info("dispatching message", "provider", key, "model", req.ModelID)
	result, err := r.client(key).SendMessage(ctx, req)
	return result, key, err
}

// Upload forwards a file upload to the resolved provider. Only OpenAI
// implements uploads today; the Anthropic client reports unsupported.
func (r *Router) Upload(ctx context.Context, path, providerName, purpose string) (FileHandle, error) {
	if purpose == "" {
		purpose = "assistants"
	}
	if providerName == "" {
		providerName = DisplayOpenAI
	}
	key := ResolveKey(providerName, "")
	return r.client(key).UploadFile(ctx, path, purpose)
}

// File passthroughs: provider file objects are an OpenAI-only surface in
// the current design.

func (r *Router) GetFile(ctx context.Context, fileID string) (FileHandle, error) {
	return r.openai.GetFile(ctx, fileID)
}

func (r *Router) ListFiles(ctx context.Context, purpose string) ([]FileHandle, error) {
	return r.openai.ListFiles(ctx, purpose)
}

func (r *Router) DeleteFile(ctx context.Context, fileID string) error {
	return r.openai.DeleteFile(ctx, fileID)
}
