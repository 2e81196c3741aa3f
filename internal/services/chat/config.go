// File: internal/services/chat/config.go
package chat

import "fmt"

// Conversation defaults. These mirror what the frontend expects: a fresh
// chat opens with a greeting, titles stay short, and context stays bounded.
const (
	DefaultTitle   = "New Conversation"
	WelcomeMessage = "Hello! I'm Claude. How can I help you today?"

	// DefaultModelID handles sends that omit a model selection.
	DefaultModelID = "claude-3-sonnet-20240229"

	// SummaryPrompt asks the model for a compact rolling summary of the
	// whole conversation so far.
	SummaryPrompt = "Summarize the key points of this conversation concisely. " +
		"Keep names, decisions, and open questions. Reply with the summary only."
)

// Config holds conversation assembly settings.
type Config struct {
	// HistoryWindow is how many prior messages are replayed to the
	// provider on each send.
	HistoryWindow int

	// SummaryInterval triggers a background re-summarization every N
	// messages once the chat has grown past one interval.
	SummaryInterval int

	// EditHistoryWindow bounds the context replayed when regenerating a
	// response after a message edit.
	EditHistoryWindow int

	// TitleMessageThreshold is the message count at or below which a sent
	// message may still become the chat title.
	TitleMessageThreshold int

	// TitleMaxLen truncates derived titles to this many characters.
	TitleMaxLen int
}

func DefaultConfig() Config {
	return Config{
		HistoryWindow:         10,
		SummaryInterval:       10,
		EditHistoryWindow:     6,
		TitleMessageThreshold: 3,
		TitleMaxLen:           30,
	}
}

func (c Config) Validate() error {
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history window must be positive, got %d", c.HistoryWindow)
	}
	if c.SummaryInterval <= 0 {
		return fmt.Errorf("summary interval must be positive, got %d", c.SummaryInterval)
	}
	if c.EditHistoryWindow <= 0 {
		return fmt.Errorf("edit history window must be positive, got %d", c.EditHistoryWindow)
	}
	if c.TitleMessageThreshold < 0 {
		return fmt.Errorf("title message threshold cannot be negative, got %d", c.TitleMessageThreshold)
	}
	if c.TitleMaxLen <= 0 {
		return fmt.Errorf("title max length must be positive, got %d", c.TitleMaxLen)
	}
	return nil
}
