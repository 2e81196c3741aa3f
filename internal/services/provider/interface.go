// File: internal/services/provider/interface.go
package provider

import "context"

// Canonical provider keys. Display names ("Claude", "GPT") are resolved
// to these by the Router and never leak past this package.
const (
	KeyAnthropic = "anthropic"
	KeyOpenAI    = "openai"
)

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType tags a ContentPart variant.
type PartType string

const (
	PartText           PartType = "text"
	PartImageBase64    PartType = "image_base64"
	PartDocumentBase64 PartType = "document_base64"
	PartFileReference  PartType = "file_reference"
)

// ContentPart is one element of a multi-part message body. Exactly the
// fields for its Type are set.
type ContentPart struct {
	Type      PartType
	Text      string
	MediaType string // image/document variants
	Data      string // base64 payload
	FileID    string // file_reference variant
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// HistoryTurn is one prior turn of the conversation, in provider-neutral
// form. History content is always plain text; attachments are not replayed.
type HistoryTurn struct {
	Role    Role
	Content string
}

// SendRequest carries everything a client needs to build one upstream call.
type SendRequest struct {
	Prompt         string
	ModelID        string
	AttachmentPath string
	History        []HistoryTurn
	ContextSummary string
	FileIDs        []string
}

// SendResult is the normalized reply from any provider.
type SendResult struct {
	Content    string `json:"content"`
	ModelID    string `json:"model_id"`
	ResponseID string `json:"response_id"`
}

// ModelInfo is one entry of a provider's model catalog.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Provider    string `json:"provider,omitempty"` // display name, filled in by the Router
}

// ModelLimits describes a model's token budget.
type ModelLimits struct {
	MaxTokens     int    `json:"max_tokens"`
	ContextWindow int    `json:"context_window"`
	Name          string `json:"name"`
	Description   string `json:"description"`
}

// FileHandle is the normalized provider file record. Both the direct and
// the chunked upload path produce this same shape.
type FileHandle struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Bytes     int64  `json:"bytes"`
	Purpose   string `json:"purpose"`
	CreatedAt int64  `json:"created_at"`
}

// Logger is the logging interface used across provider clients.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Client encapsulates one upstream provider's wire protocol. Implementations
// hold no mutable state beyond their HTTP clients; all mutation of chat
// state happens in the conversation service.
type Client interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
	GetModelLimits(ctx context.Context, modelID string) (ModelLimits, error)
	SendMessage(ctx context.Context, req SendRequest) (SendResult, error)
	UploadFile(ctx context.Context, path, purpose string) (FileHandle, error)
}
