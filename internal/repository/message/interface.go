// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/minhle/go-chatproxy/internal/domain"
)

// MessageRepository handles message data operations. Listing is always in
// canonical conversation order (creation time, id as tiebreaker).
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error)
	FindByID(ctx context.Context, messageID uint) (*domain.Message, error)
	Update(ctx context.Context, message *domain.Message) error
	CountByChatID(ctx context.Context, chatID uint) (int64, error)
}
