// File: internal/services/chat/assembler_test.go
package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/minhle/go-chatproxy/internal/domain"
	"github.com/minhle/go-chatproxy/internal/services/provider"
)

func seedMessages(n int) []domain.Message {
	messages := make([]domain.Message, 0, n)
	for i := 0; i < n; i++ {
		messages = append(messages, domain.Message{
			ID:      uint(i + 1),
			Content: fmt.Sprintf("message %d", i+1),
			IsUser:  i%2 == 0,
		})
	}
	return messages
}

func TestRecentHistoryBoundedByWindow(t *testing.T) {
	a := NewContextAssembler(Config{HistoryWindow: 10, SummaryInterval: 10, EditHistoryWindow: 6, TitleMaxLen: 30})

	turns := a.RecentHistory(seedMessages(15))
	if len(turns) != 10 {
		t.Fatalf("got %d turns, want 10", len(turns))
	}
	if turns[0].Content != "message 6" {
		t.Errorf("window starts at %q, want message 6", turns[0].Content)
	}
	if turns[9].Content != "message 15" {
		t.Errorf("window ends at %q, want message 15", turns[9].Content)
	}
}

func TestRecentHistoryShortConversation(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())

	turns := a.RecentHistory(seedMessages(3))
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	if turns[0].Role != provider.RoleUser || turns[1].Role != provider.RoleAssistant {
		t.Errorf("roles not mapped: %+v", turns)
	}
}

func TestRecentHistoryEmpty(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())
	if turns := a.RecentHistory(nil); len(turns) != 0 {
		t.Errorf("got %d turns for empty conversation", len(turns))
	}
}

func TestEditContextStopsBeforeEditedMessage(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())
	messages := seedMessages(12)

	turns := a.EditContext(messages, 9)
	if len(turns) != 6 {
		t.Fatalf("got %d turns, want 6", len(turns))
	}
	if turns[len(turns)-1].Content != "message 8" {
		t.Errorf("context ends at %q, want message 8", turns[len(turns)-1].Content)
	}
	for _, turn := range turns {
		if turn.Content == "message 9" {
			t.Errorf("edited message leaked into its own context")
		}
	}
}

func TestEditContextUnknownIDUsesFullTail(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())
	turns := a.EditContext(seedMessages(4), 999)
	if len(turns) != 4 {
		t.Errorf("got %d turns, want 4", len(turns))
	}
}

func TestShouldSummarize(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())

	cases := []struct {
		count int
		want  bool
	}{
		{0, false},
		{5, false},
		{10, false}, // first interval boundary, nothing old enough yet
		{11, false},
		{20, true},
		{21, false},
		{30, true},
	}
	for _, tc := range cases {
		if got := a.ShouldSummarize(tc.count); got != tc.want {
			t.Errorf("ShouldSummarize(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestSummaryInputCoversWholeConversation(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())
	messages := []domain.Message{
		{Content: "What is Go?", IsUser: true},
		{Content: "A programming language.", IsUser: false},
	}

	input := a.SummaryInput(messages, "")
	if !strings.Contains(input, "User: What is Go?") {
		t.Errorf("missing user turn:\n%s", input)
	}
	if !strings.Contains(input, "Assistant: A programming language.") {
		t.Errorf("missing assistant turn:\n%s", input)
	}
	if !strings.HasSuffix(input, SummaryPrompt) {
		t.Errorf("instruction not appended:\n%s", input)
	}
}

func TestSummaryInputCapped(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())
	messages := []domain.Message{
		{Content: strings.Repeat("old ", 5000), IsUser: true},
		{Content: "newest turn", IsUser: false},
	}

	input := a.SummaryInput(messages, "")
	if len([]rune(input)) > summaryInputLimit+len(SummaryPrompt)+1 {
		t.Errorf("input length %d exceeds cap", len([]rune(input)))
	}
	if !strings.Contains(input, "newest turn") {
		t.Error("newest turn dropped by the cap")
	}
	if !strings.HasSuffix(input, SummaryPrompt) {
		t.Error("instruction not appended")
	}
}

func TestSummaryInputKeepsPreviousSummaryWhenCapped(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())
	previous := "Earlier the user shared the launch codename Heron."
	messages := []domain.Message{
		{Content: strings.Repeat("filler ", 3000), IsUser: true},
		{Content: "latest question", IsUser: false},
	}

	input := a.SummaryInput(messages, previous)
	if !strings.Contains(input, previous) {
		t.Error("previous summary dropped from capped input")
	}
	if !strings.Contains(input, "latest question") {
		t.Error("newest turn dropped by the cap")
	}
	if strings.Index(input, previous) > strings.Index(input, "latest question") {
		t.Error("previous summary should precede the transcript")
	}
	if !strings.HasSuffix(input, SummaryPrompt) {
		t.Error("instruction not appended")
	}
}

func TestDeriveTitle(t *testing.T) {
	a := NewContextAssembler(DefaultConfig())

	if got := a.DeriveTitle("  Hello  "); got != "Hello" {
		t.Errorf("DeriveTitle trimmed = %q", got)
	}
	long := strings.Repeat("a", 40)
	if got := a.DeriveTitle(long); got != strings.Repeat("a", 30)+"..." {
		t.Errorf("DeriveTitle long = %q", got)
	}
}

func TestTruncateTextRuneSafe(t *testing.T) {
	if got := TruncateText("héllo wörld", 5); got != "héllo..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateText("short", 30); got != "short" {
		t.Errorf("got %q", got)
	}
}
