// File: internal/services/chat/assembler.go
package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/minhle/go-chatproxy/internal/domain"
	"github.com/minhle/go-chatproxy/internal/services/provider"
)

// ContextAssembler builds the bounded conversation context sent upstream.
// It is stateless; all inputs come in as message slices already in
// conversation order.
type ContextAssembler struct {
	config Config
}

func NewContextAssembler(config Config) *ContextAssembler {
	return &ContextAssembler{config: config}
}

// RecentHistory converts the last HistoryWindow messages into provider
// turns. The caller passes the stored messages up to but not including the
// message being sent now.
func (a *ContextAssembler) RecentHistory(messages []domain.Message) []provider.HistoryTurn {
	return historyWindow(messages, a.config.HistoryWindow)
}

// EditContext builds the replay window for regenerating a response after an
// edit: the EditHistoryWindow messages preceding the edited one, followed by
// the edited content itself as the prompt's history tail.
func (a *ContextAssembler) EditContext(messages []domain.Message, editedID uint) []provider.HistoryTurn {
	cut := len(messages)
	for i, m := range messages {
		if m.ID == editedID {
			cut = i
			break
		}
	}
	return historyWindow(messages[:cut], a.config.EditHistoryWindow)
}

// ShouldSummarize reports whether the chat has reached a summarization
// checkpoint: the count is a multiple of the interval and the chat has
// grown past the first interval.
func (a *ContextAssembler) ShouldSummarize(messageCount int) bool {
	interval := a.config.SummaryInterval
	return messageCount > interval && messageCount%interval == 0
}

// summaryInputLimit caps the transcript fed to the summarizer, in runes.
// Very long conversations keep their newest turns; the previous summary is
// prepended after truncation so the dropped head stays covered.
const summaryInputLimit = 12000

// SummaryInput renders the whole conversation as a transcript followed by
// the summarization instruction. The previous summary rides along so each
// regeneration covers everything the last one did plus the new turns, even
// when the raw transcript no longer fits under the cap.
func (a *ContextAssembler) SummaryInput(messages []domain.Message, previousSummary string) string {
	var b strings.Builder
	for _, m := range messages {
		if m.IsUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	transcript := b.String()
	if utf8.RuneCountInString(transcript) > summaryInputLimit {
		runes := []rune(transcript)
		transcript = string(runes[len(runes)-summaryInputLimit:])
	}

	var out strings.Builder
	if previousSummary != "" {
		out.WriteString("Summary of the conversation so far:\n")
		out.WriteString(previousSummary)
		out.WriteString("\n\n")
	}
	out.WriteString(transcript)
	out.WriteString("\n")
	out.WriteString(SummaryPrompt)
	return out.String()
}

// DeriveTitle turns the first real user message into a chat title,
// truncated to the configured length.
func (a *ContextAssembler) DeriveTitle(content string) string {
	return TruncateText(strings.TrimSpace(content), a.config.TitleMaxLen)
}

func historyWindow(messages []domain.Message, window int) []provider.HistoryTurn {
	start := len(messages) - window
	if start < 0 {
		start = 0
	}

	turns := make([]provider.HistoryTurn, 0, len(messages)-start)
	for _, m := range messages[start:] {
		role := provider.RoleAssistant
		if m.IsUser {
			role = provider.RoleUser
		}
		turns = append(turns, provider.HistoryTurn{Role: role, Content: m.Content})
	}
	return turns
}

// TruncateText shortens text to maxLen runes, appending "..." when content
// was dropped. Rune-safe so multi-byte content never gets split.
func TruncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + "..."
}
