package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sankat-mitra/api/model"
)

func TestGetCurrentCreatesWhenNothingExists(t *testing.T) {
	store, _, directory := newTestStores(0)
	seedUser(t, store, "user-1")
	ctx := context.Background()

	sessionID, err := directory.GetCurrent(ctx, "user-1")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if sessionID == "" {
		t.Fatal("current session id must never be empty")
	}

	// The created session is real and owned by the user.
	if _, err := directory.Get(ctx, "user-1", sessionID); err != nil {
		t.Fatalf("created session not fetchable: %v", err)
	}

	// Resolving again returns the same session, not a new one.
	again, err := directory.GetCurrent(ctx, "user-1")
	if err != nil {
		t.Fatalf("get current again: %v", err)
	}
	if again != sessionID {
		t.Fatalf("current session changed between calls: %s then %s", sessionID, again)
	}
}

func TestGetCurrentHealsDanglingPointer(t *testing.T) {
	store, _, directory := newTestStores(0)
	seedUser(t, store, "user-1")
	ctx := context.Background()

	session := seedSession(t, directory, "user-1")

	// Simulate another device deleting the session behind this process's
	// local cache: remove the record directly from the store.
	if err := store.DeleteSession(ctx, "user-1", session.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	healed, err := directory.GetCurrent(ctx, "user-1")
	if err != nil {
		t.Fatalf("get current after dangling pointer: %v", err)
	}
	if healed == session.ID {
		t.Fatal("resolution returned the deleted session")
	}
	if healed == "" {
		t.Fatal("healing must still yield a session")
	}
}

func TestGetCurrentUsesPersistedPointerAcrossRestarts(t *testing.T) {
	store, _, directoryA := newTestStores(0)
	seedUser(t, store, "user-1")
	ctx := context.Background()

	session, err := directoryA.Create(ctx, "user-1", "Flood questions")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// A fresh directory over the same store models a process restart: the
	// local tier is cold, only the persisted pointer survives.
	messagesB := NewMessageStore(store, 0)
	directoryB := NewSessionDirectory(store, nil, messagesB)

	got, err := directoryB.GetCurrent(ctx, "user-1")
	if err != nil {
		t.Fatalf("get current on fresh directory: %v", err)
	}
	if got != session.ID {
		t.Fatalf("persisted pointer ignored: got %s, want %s", got, session.ID)
	}
}

func TestDeleteCurrentCreatesReplacement(t *testing.T) {
	store, messages, directory := newTestStores(0)
	seedUser(t, store, "user-1")
	ctx := context.Background()

	session := seedSession(t, directory, "user-1")
	if _, err := messages.Append(ctx, "user-1", session.ID, model.MessageRoleUser, "hi", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := directory.Delete(ctx, "user-1", session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The deleted session is gone along with its messages.
	if _, err := directory.Get(ctx, "user-1", session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted session still fetchable: %v", err)
	}
	leftover, err := messages.List(ctx, "user-1", session.ID)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(leftover) != 0 {
		t.Fatalf("messages survived session delete: %d", len(leftover))
	}

	// The user is never left without a current session.
	replacement, err := directory.GetCurrent(ctx, "user-1")
	if err != nil {
		t.Fatalf("get current after delete: %v", err)
	}
	if replacement == "" || replacement == session.ID {
		t.Fatalf("expected a fresh replacement session, got %q", replacement)
	}
}

func TestDeleteNonCurrentKeepsPointer(t *testing.T) {
	store, messages, directory := newTestStores(0)
	seedUser(t, store, "user-1")
	ctx := context.Background()

	older := seedSession(t, directory, "user-1")
	if _, err := messages.Append(ctx, "user-1", older.ID, model.MessageRoleUser, "old turn", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	current := seedSession(t, directory, "user-1")

	if err := directory.Delete(ctx, "user-1", older.ID); err != nil {
		t.Fatalf("delete non-current: %v", err)
	}

	got, err := directory.GetCurrent(ctx, "user-1")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if got != current.ID {
		t.Fatalf("pointer moved on non-current delete: got %s, want %s", got, current.ID)
	}
}

func TestDeleteMissingSessionIsIdempotent(t *testing.T) {
	store, _, directory := newTestStores(0)
	seedUser(t, store, "user-1")

	if err := directory.Delete(context.Background(), "user-1", "never-existed"); err != nil {
		t.Fatalf("deleting a missing session must be a no-op, got %v", err)
	}
}

func TestReapEmptyKeepsRealSessions(t *testing.T) {
	store, messages, directory := newTestStores(0)
	seedUser(t, store, "user-1")
	ctx := context.Background()

	empty := seedSession(t, directory, "user-1")
	full := seedSession(t, directory, "user-1")
	if _, err := messages.Append(ctx, "user-1", full.ID, model.MessageRoleUser, "keep me", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := directory.ReapEmpty(ctx, "user-1"); err != nil {
		t.Fatalf("reap: %v", err)
	}

	sessions, err := directory.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != full.ID {
		t.Fatalf("reap kept wrong sessions: %+v", sessions)
	}
	if _, err := directory.Get(ctx, "user-1", empty.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty session survived the reap: %v", err)
	}

	// Running the reap again changes nothing.
	if err := directory.ReapEmpty(ctx, "user-1"); err != nil {
		t.Fatalf("second reap: %v", err)
	}
	sessions, err = directory.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list after second reap: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("second reap was not a no-op: %+v", sessions)
	}
}

func TestRename(t *testing.T) {
	store, _, directory := newTestStores(0)
	seedUser(t, store, "user-1")
	ctx := context.Background()

	session := seedSession(t, directory, "user-1")
	if err := directory.Rename(ctx, "user-1", session.ID, "Earthquake drill"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	got, err := directory.Get(ctx, "user-1", session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Earthquake drill" {
		t.Fatalf("title not updated: %q", got.Title)
	}

	if err := directory.Rename(ctx, "user-1", "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rename of missing session should be ErrNotFound, got %v", err)
	}
}

func TestSessionsAreUserScoped(t *testing.T) {
	store, _, directory := newTestStores(0)
	seedUser(t, store, "user-1")
	seedUser(t, store, "user-2")
	ctx := context.Background()

	mine := seedSession(t, directory, "user-1")

	if _, err := directory.Get(ctx, "user-2", mine.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("another user's session must be invisible, got %v", err)
	}
}
