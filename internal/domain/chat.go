// File: internal/domain/chat.go
package domain

import "time"

// Chat represents a single conversation thread.
type Chat struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	Title          string    `json:"title" gorm:"not null"`
	ContextSummary string    `json:"context_summary"` // rolling digest of older turns, regenerated periodically
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Messages []Message `json:"messages,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
