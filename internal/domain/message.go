// File: internal/domain/message.go
package domain

import "time"

// Message represents a single message within a chat. Messages are
// append-only; the only mutation path is editing a user message and
// regenerating its paired assistant response.
type Message struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	ChatID        uint      `json:"chat_id" gorm:"not null;index"`
	Content       string    `json:"content" gorm:"not null"`
	IsUser        bool      `json:"is_user" gorm:"not null"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	ModelID       string    `json:"model_id,omitempty"` // model that produced an assistant message
	Provider      string    `json:"provider,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
