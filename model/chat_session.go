package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultSessionTitle is the placeholder title a session is created with
// until the user renames it.
const DefaultSessionTitle = "New Chat"

// ChatSession represents one conversation thread belonging to a user.
// A session with zero messages is considered not real: it is never surfaced
// in listings and gets reaped eagerly.
type ChatSession struct {
	ID            string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID        string         `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Title         string         `gorm:"type:varchar(255)" json:"title"`
	LastMessageAt *time.Time     `json:"last_message_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName specifies the table name for ChatSession
func (ChatSession) TableName() string {
	return "chat_sessions"
}
