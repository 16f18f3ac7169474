package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/sankat-mitra/api/database"
	"github.com/sankat-mitra/api/model"
	"gorm.io/datatypes"
)

// DefaultDeleteBatchSize is how many messages one deletion round removes.
// The backing document store caps batch deletes, so DeleteAll loops in
// rounds of this size instead of issuing one large transaction.
const DefaultDeleteBatchSize = 100

// MessageStore is the durable per-user, per-session ordered message log.
type MessageStore struct {
	store     database.Storage
	batchSize int
}

// NewMessageStore creates a message store over the given storage backend.
// batchSize <= 0 falls back to DefaultDeleteBatchSize.
func NewMessageStore(store database.Storage, batchSize int) *MessageStore {
	if batchSize <= 0 {
		batchSize = DefaultDeleteBatchSize
	}
	return &MessageStore{store: store, batchSize: batchSize}
}

// Append atomically appends one message to the session log. Seq and
// Timestamp are assigned server-side, strictly greater than the previous
// message's in that session. On ErrStoreUnavailable the caller must treat
// the message as not durably saved.
func (m *MessageStore) Append(ctx context.Context, userID, sessionID string, role model.MessageRole, content string, metadata map[string]interface{}) (*model.ChatMessage, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("append: role %q: %w", role, ErrInvariantViolation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("append: empty content: %w", ErrInvariantViolation)
	}

	msg := &model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		Metadata:  datatypes.JSONMap(metadata),
	}

	if err := m.store.AppendMessage(ctx, msg); err != nil {
		return nil, wrapStoreErr("append message", err)
	}

	// Touch failure only degrades session ordering metadata, never the log.
	if err := m.store.TouchSession(ctx, userID, sessionID, msg.Timestamp); err != nil {
		log.Printf("[MessageStore] Warning: failed to touch session user=%s session=%s: %v", userID, sessionID, err)
	}

	return msg, nil
}

// List returns all messages of the session in ascending order. An empty
// session yields an empty slice, not an error.
func (m *MessageStore) List(ctx context.Context, userID, sessionID string) ([]model.ChatMessage, error) {
	messages, err := m.store.ListMessages(ctx, userID, sessionID)
	if err != nil {
		return nil, wrapStoreErr("list messages", err)
	}
	return messages, nil
}

// DeleteAll removes every message in the session, deleting up to batchSize
// documents per round until a round comes back short. The remaining count
// strictly decreases each round, so the loop terminates; a crash mid-way
// leaves a partially trimmed log that is safe to finish by calling again.
func (m *MessageStore) DeleteAll(ctx context.Context, userID, sessionID string) error {
	for round := 1; ; round++ {
		deleted, err := m.store.DeleteMessageBatch(ctx, userID, sessionID, m.batchSize)
		if err != nil {
			return wrapStoreErr(fmt.Sprintf("delete messages round %d", round), err)
		}
		if deleted < int64(m.batchSize) {
			if round > 1 || deleted > 0 {
				log.Printf("[MessageStore] Deleted all messages user=%s session=%s rounds=%d", userID, sessionID, round)
			}
			return nil
		}
	}
}

// Count reports how many messages the session holds.
func (m *MessageStore) Count(ctx context.Context, userID, sessionID string) (int64, error) {
	count, err := m.store.CountMessages(ctx, userID, sessionID)
	if err != nil {
		return 0, wrapStoreErr("count messages", err)
	}
	return count, nil
}
