// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/minhle/go-chatproxy/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if message.ChatID == 0 {
		return nil, errors.New("message chat ID cannot be empty")
	}
	if strings.TrimSpace(message.Content) == "" && message.AttachmentURL == "" {
		return nil, errors.New("message content cannot be empty")
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Printf("[MessageRepository] Database error during message creation: %v", err)
		return nil, errors.New("database error creating message")
	}
	return message, nil
}

// FindByChatID returns the chat's messages in conversation order, creation
// time first and id as the tiebreaker for same-timestamp rows.
func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error) {
	if chatID == 0 {
		return nil, errors.New("chat ID cannot be empty")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error listing messages for chat ID %d: %v", chatID, err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, messageID uint) (*domain.Message, error) {
	if messageID == 0 {
		return nil, ErrMessageNotFound
	}

	var message domain.Message
	err := r.db.WithContext(ctx).First(&message, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		log.Printf("[MessageRepository] Database error finding message ID %d: %v", messageID, err)
		return nil, errors.New("database error fetching message")
	}
	return &message, nil
}

func (r *gormMessageRepository) Update(ctx context.Context, message *domain.Message) error {
	if message.ID == 0 {
		return ErrMessageNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", message.ID).
		Updates(map[string]interface{}{
			"content":        message.Content,
			"model_id":       message.ModelID,
			"provider":       message.Provider,
			"attachment_url": message.AttachmentURL,
		})

	if result.Error != nil {
		log.Printf("[MessageRepository] Database error updating message ID %d: %v", message.ID, result.Error)
		return errors.New("database error updating message")
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID uint) (int64, error) {
	if chatID == 0 {
		return 0, errors.New("chat ID cannot be empty")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("chat_id = ?", chatID).
		Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for chat ID %d: %v", chatID, err)
		return 0, errors.New("database error counting messages")
	}
	return count, nil
}
