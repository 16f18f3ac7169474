package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated user of the assistant.
// Identity (credentials, profile verification) is owned by the external
// identity service; this row only mirrors the verified token subject so
// sessions have an owner to hang off.
type User struct {
	ID        string         `gorm:"type:varchar(128);primaryKey" json:"id"` // token subject, opaque
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"index" json:"email"`
	Name      string         `json:"name"`
	Language  string         `gorm:"type:varchar(8);default:'en'" json:"language"`

	// CurrentSessionID is a lookup relation, not an ownership edge: it points
	// at the session the user's next message lands in. It may dangle when the
	// session is deleted from another device; resolution self-heals.
	CurrentSessionID *string `gorm:"type:varchar(64)" json:"current_session_id,omitempty"`

	ChatSessions []ChatSession `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
