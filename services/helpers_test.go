package services

import (
	"context"
	"testing"

	"github.com/sankat-mitra/api/database"
	"github.com/sankat-mitra/api/model"
)

// newTestStores wires the service graph over the in-memory store, no Redis.
func newTestStores(batchSize int) (*database.MemoryStore, *MessageStore, *SessionDirectory) {
	store := database.NewMemoryStore()
	messages := NewMessageStore(store, batchSize)
	directory := NewSessionDirectory(store, nil, messages)
	return store, messages, directory
}

func seedUser(t *testing.T, store database.Storage, userID string) {
	t.Helper()
	err := store.UpsertUser(context.Background(), &model.User{
		ID:       userID,
		Email:    userID + "@example.com",
		Name:     "Test User",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", userID, err)
	}
}

func seedSession(t *testing.T, directory *SessionDirectory, userID string) *model.ChatSession {
	t.Helper()
	session, err := directory.Create(context.Background(), userID, model.DefaultSessionTitle)
	if err != nil {
		t.Fatalf("seed session for %s: %v", userID, err)
	}
	return session
}
