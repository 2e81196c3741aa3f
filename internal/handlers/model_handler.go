// File: internal/handlers/model_handler.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/minhle/go-chatproxy/internal/services/chat"
	"github.com/minhle/go-chatproxy/internal/services/provider"
)

type ModelHandler struct {
	router *provider.Router
}

func NewModelHandler(router *provider.Router) *ModelHandler {
	return &ModelHandler{router: router}
}

// ListModels returns the union of every provider's model catalog.
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.router.Models(r.Context())
	if err != nil {
		writeChatError(w, chat.FromProviderError("list_models", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}

// GetModelLimits returns the token budget for one model. The provider may
// be forced with ?provider=; otherwise it is inferred from the model id.
func (h *ModelHandler) GetModelLimits(w http.ResponseWriter, r *http.Request) {
	modelID := mux.Vars(r)["id"]
	if modelID == "" {
		writeError(w, http.StatusBadRequest, "Model ID is required")
		return
	}

	limits, err := h.router.ModelLimits(r.Context(), modelID, r.URL.Query().Get("provider"))
	if err != nil {
		writeChatError(w, chat.FromProviderError("model_limits", err))
		return
	}
	writeJSON(w, http.StatusOK, limits)
}
