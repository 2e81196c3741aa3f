// File: internal/services/provider/fallback.go
package provider

// Static fallbacks keep the model catalog usable when a provider's
// models endpoint is down or returns nothing. They are deliberately
// named, versioned constants so callers and tests can assert on them.

// FallbackCatalogVersion identifies the snapshot the tables below were
// taken from.
const FallbackCatalogVersion = "2024-11"

// AnthropicFallbackModels is returned by AnthropicClient.ListModels when
// the upstream catalog cannot be fetched.
var AnthropicFallbackModels = []ModelInfo{
	{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus", Description: "Most powerful model for highly complex tasks"},
	{ID: "claude-3-sonnet-20240229", Name: "Claude 3 Sonnet", Description: "Ideal balance of intelligence and speed"},
	{ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku", Description: "Fastest and most compact model for near-instant responsiveness"},
	{ID: "claude-3-5-sonnet-20241022", Name: "Claude 3.5 Sonnet", Description: "Enhanced capabilities with faster performance"},
	{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", Description: "Latest fast and efficient model"},
}

// OpenAIFallbackModels is returned by OpenAIClient.ListModels when the
// upstream catalog cannot be fetched or yields no chat models.
var OpenAIFallbackModels = []ModelInfo{
	{ID: "gpt-4o", Name: "GPT-4o", Description: "Flagship multimodal model"},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Description: "Improved GPT-4 with higher throughput"},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Description: "Balanced performance and cost"},
}

// limitsEntry pairs a base-name pattern with hard-coded token limits used
// when the model detail endpoint errors or omits fields.
type limitsEntry struct {
	substr        string
	maxTokens     int
	contextWindow int
}

// anthropicDefaultLimits is checked in order against the model id.
var anthropicDefaultLimits = []limitsEntry{
	{"claude-3-5-sonnet", 8192, 200000},
	{"claude-3-5-haiku", 8192, 200000},
	{"claude-3-opus", 4096, 200000},
	{"claude-3-sonnet", 4096, 200000},
	{"claude-3-haiku", 4096, 200000},
}

const (
	anthropicDefaultMaxTokens     = 4096
	anthropicDefaultContextWindow = 16384
)

// openaiDefaultContextWindows is checked in order against the normalized
// base model name.
var openaiDefaultContextWindows = []limitsEntry{
	{"gpt-4o", 4096, 128000},
	{"gpt-4-turbo", 4096, 128000},
	{"gpt-4-32k", 4096, 32768},
	{"gpt-4", 4096, 8192},
	{"gpt-3.5-turbo-16k", 4096, 16385},
	{"gpt-3.5-turbo", 4096, 4096},
}

const openaiDefaultContextWindow = 4096
