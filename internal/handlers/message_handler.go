// File: internal/handlers/message_handler.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/minhle/go-chatproxy/internal/services"
	"github.com/minhle/go-chatproxy/internal/storage"
)

type MessageHandler struct {
	service  *services.ConversationService
	store    *storage.LocalStore
	renderer *MarkdownRenderer
}

func NewMessageHandler(service *services.ConversationService, store *storage.LocalStore, renderer *MarkdownRenderer) *MessageHandler {
	return &MessageHandler{service: service, store: store, renderer: renderer}
}

// SendMessage accepts one user turn, as multipart form data (with an
// optional attachment under "file") or as plain JSON.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	input := services.SendMessageInput{ChatID: chatID}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		input.Content = r.FormValue("content")
		input.ModelID = r.FormValue("modelId")
		input.Provider = r.FormValue("provider")
		input.FileIDs = splitIDs(r.FormValue("fileIds"))

		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			data, readErr := io.ReadAll(io.LimitReader(file, storage.MaxUploadBytes+1))
			if readErr != nil {
				writeError(w, http.StatusBadRequest, "Failed to read attachment")
				return
			}
			path, saveErr := h.store.Save(data, header.Filename)
			if saveErr != nil {
				writeError(w, http.StatusBadRequest, saveErr.Error())
				return
			}
			input.AttachmentPath = path
		}
	} else {
		var req struct {
			Content  string   `json:"content"`
			ModelID  string   `json:"modelId"`
			Provider string   `json:"provider"`
			FileIDs  []string `json:"fileIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		input.Content = req.Content
		input.ModelID = req.ModelID
		input.Provider = req.Provider
		input.FileIDs = req.FileIDs
	}

	result, cerr := h.service.SendMessage(r.Context(), input)
	if cerr != nil {
		writeChatError(w, cerr)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user_message": h.renderer.RenderMessage(*result.UserMessage),
		"ai_message":   h.renderer.RenderMessage(*result.AIMessage),
	})
}

// EditMessage updates a user message and optionally regenerates the paired
// assistant response.
func (h *MessageHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	var req struct {
		Content     string `json:"content"`
		AIMessageID uint   `json:"aiMessageId"`
		ModelID     string `json:"modelId"`
		Provider    string `json:"provider"`
		ChatID      uint   `json:"chatId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, cerr := h.service.EditMessage(r.Context(), services.EditMessageInput{
		ChatID:      req.ChatID,
		MessageID:   messageID,
		Content:     req.Content,
		AIMessageID: req.AIMessageID,
		ModelID:     req.ModelID,
		Provider:    req.Provider,
	})
	if cerr != nil {
		writeChatError(w, cerr)
		return
	}

	resp := map[string]interface{}{
		"user_message": h.renderer.RenderMessage(*result.UserMessage),
	}
	if result.AIMessage != nil {
		resp["ai_message"] = h.renderer.RenderMessage(*result.AIMessage)
	}
	writeJSON(w, http.StatusOK, resp)
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
