// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/minhle/go-chatproxy/internal/services"
)

type ChatHandler struct {
	service  *services.ConversationService
	renderer *MarkdownRenderer
}

func NewChatHandler(service *services.ConversationService, renderer *MarkdownRenderer) *ChatHandler {
	return &ChatHandler{service: service, renderer: renderer}
}

// CreateChat opens a new conversation, optionally with a caller-supplied title.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if r.Body != nil {
		// An empty body is fine; the service falls back to the default title.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	created, cerr := h.service.CreateChat(r.Context(), req.Title)
	if cerr != nil {
		writeChatError(w, cerr)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListChats returns all chats, newest first, with message counts.
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, cerr := h.service.GetChats(r.Context())
	if cerr != nil {
		writeChatError(w, cerr)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// GetChat returns one chat and its messages in conversation order.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	found, messages, cerr := h.service.GetChatByID(r.Context(), chatID)
	if cerr != nil {
		writeChatError(w, cerr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chat":     found,
		"messages": h.renderer.RenderMessages(messages),
	})
}

// DeleteChat removes a chat and its messages.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	if cerr := h.service.DeleteChat(r.Context(), chatID); cerr != nil {
		writeChatError(w, cerr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
