// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/minhle/go-chatproxy/internal/domain"
)

var ErrChatNotFound = errors.New("chat not found")

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if strings.TrimSpace(chat.Title) == "" {
		return nil, errors.New("chat title cannot be empty")
	}

	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		log.Printf("[ChatRepository] Database error during chat creation: %v", err)
		return nil, errors.New("database error creating chat")
	}

	log.Printf("[ChatRepository] Chat created with ID: %d", chat.ID)
	return chat, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, chatID uint) (*domain.Chat, error) {
	if chatID == 0 {
		return nil, ErrChatNotFound
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		log.Printf("[ChatRepository] Database error finding chat ID %d: %v", chatID, err)
		return nil, errors.New("database error fetching chat")
	}
	return &chat, nil
}

func (r *gormChatRepository) FindAll(ctx context.Context) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error listing chats: %v", err)
		return nil, errors.New("database error fetching chats")
	}
	return chats, nil
}

func (r *gormChatRepository) UpdateTitle(ctx context.Context, chatID uint, title string) error {
	return r.updateField(ctx, chatID, "title", title)
}

func (r *gormChatRepository) UpdateContextSummary(ctx context.Context, chatID uint, summary string) error {
	return r.updateField(ctx, chatID, "context_summary", summary)
}

func (r *gormChatRepository) updateField(ctx context.Context, chatID uint, column string, value interface{}) error {
	if chatID == 0 {
		return ErrChatNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update(column, value)

	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating %s for chat ID %d: %v", column, chatID, result.Error)
		return errors.New("database error updating chat")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

// DeleteWithMessages removes the chat and every message belonging to it in
// one transaction; either both deletes succeed or neither does.
func (r *gormChatRepository) DeleteWithMessages(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return ErrChatNotFound
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Chat{}, chatID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrChatNotFound
		}
		return nil
	})

	if errors.Is(err, ErrChatNotFound) {
		return ErrChatNotFound
	}
	if err != nil {
		log.Printf("[ChatRepository] Database error deleting chat ID %d: %v", chatID, err)
		return errors.New("database error deleting chat")
	}

	log.Printf("[ChatRepository] Chat deleted: ID %d", chatID)
	return nil
}

func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return ErrChatNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP"))

	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating timestamp for chat ID %d: %v", chatID, result.Error)
		return errors.New("database error updating chat timestamp")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}
