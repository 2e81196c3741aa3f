// File: internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/minhle/go-chatproxy/internal/domain"
	chatrepo "github.com/minhle/go-chatproxy/internal/repository/chat"
	messagerepo "github.com/minhle/go-chatproxy/internal/repository/message"
	"github.com/minhle/go-chatproxy/internal/services"
	chatsvc "github.com/minhle/go-chatproxy/internal/services/chat"
	"github.com/minhle/go-chatproxy/internal/services/provider"
)

type stubRouter struct {
	reply string
}

func (s stubRouter) Send(ctx context.Context, providerName string, req provider.SendRequest) (provider.SendResult, string, error) {
	key := provider.ResolveKey(providerName, req.ModelID)
	return provider.SendResult{Content: s.reply, ModelID: req.ModelID, ResponseID: "resp-1"}, key, nil
}

func newTestRouter(t *testing.T, reply string) *mux.Router {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Chat{}, &domain.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := services.NewConversationService(
		chatrepo.NewChatRepository(db),
		messagerepo.NewMessageRepository(db),
		stubRouter{reply: reply},
		chatsvc.DefaultConfig(),
		time.Minute,
		&services.NoOpLogger{},
	)
	if err != nil {
		t.Fatalf("NewConversationService: %v", err)
	}

	renderer := NewMarkdownRenderer()
	chatHandler := NewChatHandler(svc, renderer)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats", chatHandler.ListChats).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.GetChat).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods("DELETE")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func TestCreateAndGetChatEndpoints(t *testing.T) {
	router := newTestRouter(t, "hello")

	rec, created := doJSON(t, router, http.MethodPost, "/api/chats", map[string]string{"title": "My chat"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	id := uint(created["id"].(float64))
	if created["title"] != "My chat" {
		t.Errorf("title = %v", created["title"])
	}

	rec, body := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/chats/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	messages := body["messages"].([]interface{})
	if len(messages) != 1 {
		t.Fatalf("got %d seed messages, want welcome", len(messages))
	}
	welcome := messages[0].(map[string]interface{})
	if welcome["is_user"] != false {
		t.Errorf("welcome message = %+v", welcome)
	}
	if welcome["contentHtml"] == nil || welcome["contentHtml"] == "" {
		t.Errorf("assistant message missing rendered HTML")
	}
}

func TestGetChatNotFound(t *testing.T) {
	router := newTestRouter(t, "x")

	rec, body := doJSON(t, router, http.MethodGet, "/api/chats/777", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("error body = %+v", body)
	}
}

func TestDeleteChatEndpoint(t *testing.T) {
	router := newTestRouter(t, "x")

	rec, created := doJSON(t, router, http.MethodPost, "/api/chats", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	id := uint(created["id"].(float64))

	rec, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/chats/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/chats/%d", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestMarkdownRendererOnlyForAssistant(t *testing.T) {
	renderer := NewMarkdownRenderer()

	assistant := renderer.RenderMessage(domain.Message{Content: "**bold** text", IsUser: false})
	if assistant.ContentHTML == "" || assistant.ContentHTML == assistant.Content {
		t.Errorf("assistant HTML = %q", assistant.ContentHTML)
	}

	user := renderer.RenderMessage(domain.Message{Content: "**bold** text", IsUser: true})
	if user.ContentHTML != "" {
		t.Errorf("user message should not carry HTML, got %q", user.ContentHTML)
	}
}
