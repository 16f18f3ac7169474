package database

import (
	"context"
	"errors"
	"time"

	"github.com/sankat-mitra/api/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage is the durable store collaborator boundary. Documents are
// addressed by (user_id, session_id, message_id); each method is an
// individually atomic operation. Multi-step flows (delete-then-replace,
// pointer healing) live in the service layer and are designed to be
// idempotent on retry rather than transactional across calls.
type Storage interface {
	// Users
	UpsertUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	// SetCurrentSession persists the user's current-session pointer.
	SetCurrentSession(ctx context.Context, userID, sessionID string) error

	// Sessions
	CreateSession(ctx context.Context, session *model.ChatSession) error
	GetSession(ctx context.Context, userID, sessionID string) (*model.ChatSession, error)
	ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error)
	RenameSession(ctx context.Context, userID, sessionID, title string) error
	TouchSession(ctx context.Context, userID, sessionID string, at time.Time) error
	DeleteSession(ctx context.Context, userID, sessionID string) error

	// Messages
	// AppendMessage assigns Seq and Timestamp server-side, both strictly
	// greater than the previous message's in the same session.
	AppendMessage(ctx context.Context, msg *model.ChatMessage) error
	ListMessages(ctx context.Context, userID, sessionID string) ([]model.ChatMessage, error)
	CountMessages(ctx context.Context, userID, sessionID string) (int64, error)
	// DeleteMessageBatch removes at most limit messages from the session and
	// reports how many went away. The backing store caps batch deletes, so
	// callers loop until a round comes back short.
	DeleteMessageBatch(ctx context.Context, userID, sessionID string, limit int) (int64, error)

	// Maintenance
	RecordCronJobLog(ctx context.Context, entry *model.CronJobLog) error
	PurgeCronJobLogs(ctx context.Context, olderThan time.Time) (int64, error)

	HealthCheck() error
	Close() error
}
