// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/minhle/go-chatproxy/internal/config"
	"github.com/minhle/go-chatproxy/internal/domain"
	"github.com/minhle/go-chatproxy/internal/handlers"
	"github.com/minhle/go-chatproxy/internal/middleware"
	chatrepo "github.com/minhle/go-chatproxy/internal/repository/chat"
	messagerepo "github.com/minhle/go-chatproxy/internal/repository/message"
	"github.com/minhle/go-chatproxy/internal/services"
	chatsvc "github.com/minhle/go-chatproxy/internal/services/chat"
	"github.com/minhle/go-chatproxy/internal/services/provider"
	"github.com/minhle/go-chatproxy/internal/storage"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.Chat{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	chatRepo := chatrepo.NewChatRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)

	// --- Provider clients ---
	anthropicCfg := provider.DefaultConfig()
	anthropicCfg.APIKey = cfg.AnthropicAPIKey
	anthropicCfg.BaseURL = cfg.AnthropicBaseURL
	anthropicCfg.Timeout = cfg.UpstreamTimeout
	anthropicClient, err := provider.NewAnthropicClient(anthropicCfg, services.NewLogger("anthropic"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Anthropic client: %v", err)
	}

	openaiCfg := provider.DefaultConfig()
	openaiCfg.APIKey = cfg.OpenAIAPIKey
	openaiCfg.BaseURL = cfg.OpenAIBaseURL
	openaiCfg.Timeout = cfg.UpstreamTimeout
	openaiClient, err := provider.NewOpenAIClient(openaiCfg, services.NewLogger("openai"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize OpenAI client: %v", err)
	}

	router, err := provider.NewRouter(anthropicClient, openaiClient, services.NewLogger("router"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize provider router: %v", err)
	}

	// --- Services ---
	convCfg := chatsvc.DefaultConfig()
	convCfg.HistoryWindow = cfg.HistoryWindow
	convCfg.SummaryInterval = cfg.SummaryInterval
	convCfg.EditHistoryWindow = cfg.EditHistoryWindow
	conversationService, err := services.NewConversationService(
		chatRepo, messageRepo, router, convCfg, cfg.UpstreamTimeout, services.NewLogger("conversation"),
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Conversation Service: %v", err)
	}

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize upload storage: %v", err)
	}

	// --- Handlers ---
	renderer := handlers.NewMarkdownRenderer()
	chatHandler := handlers.NewChatHandler(conversationService, renderer)
	messageHandler := handlers.NewMessageHandler(conversationService, store, renderer)
	modelHandler := handlers.NewModelHandler(router)
	fileHandler := handlers.NewFileHandler(router, store)

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(store.Dir()))))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats", chatHandler.ListChats).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.GetChat).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods("DELETE")
	api.HandleFunc("/chats/{id:[0-9]+}/messages", messageHandler.SendMessage).Methods("POST")
	api.HandleFunc("/messages/{id:[0-9]+}", messageHandler.EditMessage).Methods("PUT")
	api.HandleFunc("/models", modelHandler.ListModels).Methods("GET")
	api.HandleFunc("/models/{id}/limits", modelHandler.GetModelLimits).Methods("GET")
	api.HandleFunc("/files", fileHandler.UploadFile).Methods("POST")
	api.HandleFunc("/files", fileHandler.ListFiles).Methods("GET")
	api.HandleFunc("/files/{id}", fileHandler.GetFile).Methods("GET")
	api.HandleFunc("/files/{id}", fileHandler.DeleteFile).Methods("DELETE")

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Chat proxy server starting on port %s", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
