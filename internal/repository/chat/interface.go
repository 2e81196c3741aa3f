// File: internal/repository/chat/interface.go
package chat

import (
	"context"

	"github.com/minhle/go-chatproxy/internal/domain"
)

// ChatRepository handles chat data operations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id uint) (*domain.Chat, error)
	FindAll(ctx context.Context) ([]domain.Chat, error)
	UpdateTitle(ctx context.Context, chatID uint, title string) error
	UpdateContextSummary(ctx context.Context, chatID uint, summary string) error
	DeleteWithMessages(ctx context.Context, chatID uint) error
	TouchUpdatedAt(ctx context.Context, chatID uint) error
}
