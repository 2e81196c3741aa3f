// File: internal/handlers/markdown.go
package handlers

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/minhle/go-chatproxy/internal/domain"
)

// MessageView is a message plus its rendered HTML. Only assistant messages
// get contentHtml; user text is rendered verbatim by the frontend.
type MessageView struct {
	domain.Message
	ContentHTML string `json:"contentHtml,omitempty"`
}

// MarkdownRenderer converts assistant markdown into HTML for the frontend.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render converts one markdown document to HTML. On failure it returns the
// empty string; the frontend falls back to the raw content.
func (r *MarkdownRenderer) Render(content string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// RenderMessage wraps one message, attaching HTML for assistant turns.
func (r *MarkdownRenderer) RenderMessage(m domain.Message) MessageView {
	view := MessageView{Message: m}
	if !m.IsUser {
		view.ContentHTML = r.Render(m.Content)
	}
	return view
}

// RenderMessages wraps a message slice in order.
func (r *MarkdownRenderer) RenderMessages(messages []domain.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, r.RenderMessage(m))
	}
	return views
}
