// File: internal/handlers/file_handler.go
package handlers

import (
	"io"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/minhle/go-chatproxy/internal/services/chat"
	"github.com/minhle/go-chatproxy/internal/services/provider"
	"github.com/minhle/go-chatproxy/internal/storage"
)

// FileHandler forwards provider file operations. Files are staged in local
// storage before the upstream upload so partial uploads never hold the
// request body open.
type FileHandler struct {
	router *provider.Router
	store  *storage.LocalStore
}

func NewFileHandler(router *provider.Router, store *storage.LocalStore) *FileHandler {
	return &FileHandler{router: router, store: store}
}

// UploadFile stages a multipart upload locally, then pushes it to the
// resolved provider. The staging copy is removed afterwards.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	path, err := h.store.Save(data, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(path)

	handle, err := h.router.Upload(r.Context(), path, r.FormValue("provider"), r.FormValue("purpose"))
	if err != nil {
		writeChatError(w, chat.FromProviderError("upload_file", err))
		return
	}
	writeJSON(w, http.StatusCreated, handle)
}

// ListFiles returns provider files, optionally filtered by ?purpose=.
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.router.ListFiles(r.Context(), r.URL.Query().Get("purpose"))
	if err != nil {
		writeChatError(w, chat.FromProviderError("list_files", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// GetFile returns one provider file record.
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["id"]
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	handle, err := h.router.GetFile(r.Context(), fileID)
	if err != nil {
		writeChatError(w, chat.FromProviderError("get_file", err))
		return
	}
	writeJSON(w, http.StatusOK, handle)
}

// DeleteFile removes one provider file.
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["id"]
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	if err := h.router.DeleteFile(r.Context(), fileID); err != nil {
		writeChatError(w, chat.FromProviderError("delete_file", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
