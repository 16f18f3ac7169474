package model

import (
	"time"

	"gorm.io/datatypes"
)

// MessageRole represents the role of the message sender.
// Exactly two variants are persisted; system/tool turns never reach the log.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the two persisted variants.
func (r MessageRole) Valid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

// Metadata keys used by the responder.
const (
	MetaKeyLanguage     = "language"      // output language tag ("en", "hi")
	MetaKeyResponseKind = "response_kind" // "small_talk", "knowledge", "apology"
	MetaKeyIntent       = "intent"        // small-talk intent tag
)

// ChatMessage represents a single turn in a chat session.
// Messages are immutable once written; there is no edit operation. Deletion
// is permanent (no soft-delete column): a soft-deleted row would keep its
// (session_id, seq) slot and block the unique index when a surviving session
// starts appending from seq 1 again.
type ChatMessage struct {
	ID        string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	SessionID string         `gorm:"type:varchar(64);not null;index:idx_session_seq,unique" json:"session_id"`
	UserID    string         `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Role      MessageRole    `gorm:"type:varchar(20);not null" json:"role"`
	Content   string         `gorm:"type:text;not null" json:"content"`

	// Seq is a per-session sequence number assigned by the store on append.
	// It is the ordering authority: Timestamp is server-assigned too, but two
	// appends can land in the same clock tick.
	Seq       int64             `gorm:"not null;index:idx_session_seq,unique" json:"seq"`
	Timestamp time.Time         `gorm:"not null" json:"timestamp"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Session ChatSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	User    User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "chat_messages"
}
