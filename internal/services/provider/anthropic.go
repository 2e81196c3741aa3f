// File: internal/services/provider/anthropic.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AnthropicClient talks to the Anthropic Messages and Models APIs over
// plain HTTP. There is no file upload API upstream; UploadFile reports
// the operation as unsupported.
type AnthropicClient struct {
	config *Config
	http   *http.Client
	logger Logger
}

func NewAnthropicClient(config *Config, logger Logger) (*AnthropicClient, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(KeyAnthropic, err.Error())
	}
	return &AnthropicClient{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

func (c *AnthropicClient) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
	req.Header.Set("Content-Type", "application/json")
}

// ListModels returns the upstream catalog, or the versioned static
// fallback when the catalog endpoint is unreachable or empty. The caller
// never hard-fails just because the catalog is down.
func (c *AnthropicClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/models", nil)
	if err != nil {
		return AnthropicFallbackModels, nil
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("anthropic model list failed, using fallback catalog", "error", err.Error())
		return AnthropicFallbackModels, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		c.logger.Warn("anthropic model list failed, using fallback catalog",
			"status", resp.StatusCode)
		return AnthropicFallbackModels, nil
	}

	var list anthropicModelList
	if err := json.Unmarshal(body, &list); err != nil || len(list.Data) == 0 {
		c.logger.Warn("anthropic model list empty, using fallback catalog")
		return AnthropicFallbackModels, nil
	}

	models := make([]ModelInfo, 0, len(list.Data))
	for _, m := range list.Data {
		name := m.DisplayName
		if name == "" {
			name = m.ID
		}
		models = append(models, ModelInfo{
			ID:          m.ID,
			Name:        name,
			Description: fmt.Sprintf("%s model", name),
		})
	}
	return models, nil
}

// GetModelLimits fetches the model detail endpoint and degrades to the
// hard-coded per-family defaults when the endpoint errors or omits fields.
func (c *AnthropicClient) GetModelLimits(ctx context.Context, modelID string) (ModelLimits, error) {
	fallback := anthropicLimitsFor(modelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/models/"+modelID, nil)
	if err != nil {
		return fallback, nil
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("anthropic model detail failed, using defaults", "model", modelID, "error", err.Error())
		return fallback, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ModelLimits{}, &ProviderError{
			Type: ErrTypeNotFound, Provider: KeyAnthropic, Operation: "model_limits",
			Message: fmt.Sprintf("model %s not found", modelID),
		}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("anthropic model detail failed, using defaults", "model", modelID, "status", resp.StatusCode)
		return fallback, nil
	}

	var entry anthropicModelEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return fallback, nil
	}

	limits := fallback
	if entry.MaxTokens > 0 {
		limits.MaxTokens = entry.MaxTokens
	}
	if entry.ContextWindow > 0 {
		limits.ContextWindow = entry.ContextWindow
	}
	if entry.DisplayName != "" {
		limits.Name = entry.DisplayName
	}
	if entry.Description != "" {
		limits.Description = entry.Description
	}
	return limits, nil
}

// anthropicLimitsFor resolves the hard-coded default limits for a model id
// by matching its family name.
func anthropicLimitsFor(modelID string) ModelLimits {
	limits := ModelLimits{
		MaxTokens:     anthropicDefaultMaxTokens,
		ContextWindow: anthropicDefaultContextWindow,
		Name:          modelID,
		Description:   fmt.Sprintf("Model %s", modelID),
	}
	for _, entry := range anthropicDefaultLimits {
		if strings.Contains(modelID, entry.substr) {
			limits.MaxTokens = entry.maxTokens
			limits.ContextWindow = entry.contextWindow
			break
		}
	}
	return limits
}

// SendMessage builds the Messages API payload: the rolling context summary
// rides the top-level system field, prior turns map to user/assistant
// messages, and an attachment becomes an image or document block next to
// the prompt text.
func (c *AnthropicClient) SendMessage(ctx context.Context, req SendRequest) (SendResult, error) {
	maxTokens := c.config.MaxOutputTokens
	if limits, err := c.GetModelLimits(ctx, req.ModelID); err == nil && limits.MaxTokens > 0 {
		if limits.MaxTokens < maxTokens {
			maxTokens = limits.MaxTokens
		}
	}

	messages := make([]anthropicMsg, 0, len(req.History)+1)
	for _, turn := range req.History {
		messages = append(messages, anthropicMsg{Role: string(turn.Role), Content: turn.Content})
	}

	parts, err := buildContentParts(KeyAnthropic, req.Prompt, req.AttachmentPath, req.FileIDs, anthropicMediaTypes)
	if err != nil {
		return SendResult{}, err
	}

	userMsg := anthropicMsg{Role: "user", Content: req.Prompt}
	hadAttachment := req.AttachmentPath != ""
	if len(parts) > 1 {
		blocks := make([]anthropicBlock, 0, len(parts))
		for _, p := range parts {
			switch p.Type {
			case PartText:
				blocks = append(blocks, anthropicBlock{Type: "text", Text: p.Text})
			case PartImageBase64:
				blocks = append(blocks, anthropicBlock{Type: "image",
					Source: &anthropicSource{Type: "base64", MediaType: p.MediaType, Data: p.Data}})
			case PartDocumentBase64:
				blocks = append(blocks, anthropicBlock{Type: "document",
					Source: &anthropicSource{Type: "base64", MediaType: p.MediaType, Data: p.Data}})
			case PartFileReference:
				// No files API upstream; references cannot be forwarded.
				c.logger.Warn("dropping file reference, not supported by anthropic", "file_id", p.FileID)
			}
		}
		userMsg.Content = blocks
	}
	messages = append(messages, userMsg)

	temp := c.config.Temperature
	wireReq := anthropicRequest{
		Model:       req.ModelID,
		MaxTokens:   maxTokens,
		Messages:    messages,
		System:      req.ContextSummary,
		Temperature: &temp,
	}

	c.logger.Debug("sending anthropic request",
		"model", req.ModelID,
		"messages", len(messages),
		"has_summary", req.ContextSummary != "",
		"has_attachment", hadAttachment,
	)

	result, upstreamMsg, err := c.doSend(ctx, wireReq)
	if err == nil {
		return result, nil
	}

	// One attachment-stripped retry when the upstream rejected a request
	// parameter. It shares the caller's context deadline.
	if hadAttachment && isUnsupportedParamError(upstreamMsg) {
		c.logger.Warn("anthropic rejected attachment payload, retrying without it", "model", req.ModelID)
		retryReq := anthropicRequest{
			Model:     req.ModelID,
			MaxTokens: maxTokens,
			System: "The user attached a file to this message, but it could not be " +
				"forwarded to you. Let them know you cannot see the attachment.",
			Messages: []anthropicMsg{{Role: "user", Content: req.Prompt}},
		}
		if result, _, retryErr := c.doSend(ctx, retryReq); retryErr == nil {
			return result, nil
		}
	}
	return SendResult{}, err
}

// doSend performs one Messages API call and normalizes the reply. The
// second return value carries the raw upstream error message for retry
// classification.
func (c *AnthropicClient) doSend(ctx context.Context, wireReq anthropicRequest) (SendResult, string, error) {
	payload, err := json.Marshal(wireReq)
	if err != nil {
		return SendResult{}, "", NewUpstreamError(KeyAnthropic, "send_message", "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return SendResult{}, "", NewUpstreamError(KeyAnthropic, "send_message", "failed to build request", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return SendResult{}, "", NewUpstreamError(KeyAnthropic, "send_message", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SendResult{}, "", NewUpstreamError(KeyAnthropic, "send_message", "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody anthropicErrorBody
		upstreamMsg := string(body)
		if json.Unmarshal(body, &errBody) == nil && errBody.Error.Message != "" {
			upstreamMsg = errBody.Error.Message
		}
		return SendResult{}, upstreamMsg, NewUpstreamError(KeyAnthropic, "send_message",
			fmt.Sprintf("API error: status %d: %s", resp.StatusCode, upstreamMsg), nil)
	}

	var wireResp anthropicResponse
	if err := json.Unmarshal(body, &wireResp); err != nil {
		return SendResult{}, "", NewUpstreamError(KeyAnthropic, "send_message", "failed to unmarshal response", err)
	}

	var text string
	for _, block := range wireResp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	return SendResult{Content: text, ModelID: wireResp.Model, ResponseID: wireResp.ID}, "", nil
}

// UploadFile is not available upstream; Anthropic exposes no files API in
// this integration.
func (c *AnthropicClient) UploadFile(ctx context.Context, path, purpose string) (FileHandle, error) {
	return FileHandle{}, NewUnsupportedError(KeyAnthropic, "upload_file",
		"Anthropic does not support file uploads")
}
