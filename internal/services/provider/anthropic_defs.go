// File: internal/services/provider/anthropic_defs.go
package provider

// Anthropic Messages API wire types.

const anthropicAPIVersion = "2023-06-01"

type anthropicRequest struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	Messages    []anthropicMsg `json:"messages"`
	System      string         `json:"system,omitempty"`
	Temperature *float32       `json:"temperature,omitempty"`
}

// anthropicMsg is a message in the Anthropic format. Content is either a
// plain string or a []anthropicBlock.
type anthropicMsg struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// anthropicBlock is a polymorphic content element.
type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

// anthropicSource carries base64-encoded image or document data.
type anthropicSource struct {
	Type      string `json:"type"` // "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Role       string           `json:"role"`
	Content    []anthropicBlock `json:"content"`
	Model      string           `json:"model"`
	StopReason string           `json:"stop_reason"`
}

type anthropicErrorBody struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type anthropicModelEntry struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	CreatedAt     string `json:"created_at"`
	MaxTokens     int    `json:"max_tokens"`
	ContextWindow int    `json:"context_window"`
	Description   string `json:"description"`
}

type anthropicModelList struct {
	Data []anthropicModelEntry `json:"data"`
}
