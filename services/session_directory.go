package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sankat-mitra/api/database"
	"github.com/sankat-mitra/api/model"
	"github.com/sankat-mitra/api/utils/cache"
)

const (
	currentSessionKeyPrefix = "chat:current_session:"
	currentSessionCacheTTL  = 24 * time.Hour
)

// SessionDirectory tracks the set of sessions per user and the single
// "current session" pointer. The pointer is resolved through three tiers:
// a process-local cache, an optional shared Redis tier, and the persisted
// pointer on the user record. The tiers can drift when another device
// mutates the same user; resolution self-heals instead of erroring.
type SessionDirectory struct {
	store    database.Storage
	cache    *cache.RedisCache // nil when Redis is not configured
	messages *MessageStore

	mu    sync.RWMutex
	local map[string]string // user id -> current session id
}

// NewSessionDirectory creates a session directory. redisCache may be nil.
func NewSessionDirectory(store database.Storage, redisCache *cache.RedisCache, messages *MessageStore) *SessionDirectory {
	return &SessionDirectory{
		store:    store,
		cache:    redisCache,
		messages: messages,
		local:    make(map[string]string),
	}
}

// GetCurrent returns the user's current session id, creating and installing
// a fresh session when no tier resolves to a session that still exists.
func (d *SessionDirectory) GetCurrent(ctx context.Context, userID string) (string, error) {
	// Tier 1: process-local cache.
	d.mu.RLock()
	sessionID, ok := d.local[userID]
	d.mu.RUnlock()
	if ok && d.sessionExists(ctx, userID, sessionID) {
		return sessionID, nil
	}

	// Tier 2: shared Redis tier, healed from other devices faster than the
	// persisted record.
	if d.cache != nil {
		cached, err := d.cache.Get(ctx, currentSessionKeyPrefix+userID)
		if err != nil && !errors.Is(err, cache.ErrNotFound) {
			log.Printf("[SessionDirectory] Warning: redis read failed user=%s: %v", userID, err)
		}
		if cached != "" && d.sessionExists(ctx, userID, cached) {
			d.mu.Lock()
			d.local[userID] = cached
			d.mu.Unlock()
			return cached, nil
		}
	}

	// Tier 3: persisted pointer, honoured only while the session it points
	// at still exists.
	user, err := d.store.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return "", wrapStoreErr("get user", err)
	}
	if user != nil && user.CurrentSessionID != nil && d.sessionExists(ctx, userID, *user.CurrentSessionID) {
		d.SetCurrent(ctx, userID, *user.CurrentSessionID)
		return *user.CurrentSessionID, nil
	}

	// Nothing valid anywhere: start a fresh conversation.
	session, err := d.Create(ctx, userID, model.DefaultSessionTitle)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// SetCurrent installs the pointer cache-first: the in-memory effect holds
// for the rest of the request even when persistence fails, which is logged
// but non-fatal (a restart merely reverts the pointer).
func (d *SessionDirectory) SetCurrent(ctx context.Context, userID, sessionID string) {
	d.mu.Lock()
	d.local[userID] = sessionID
	d.mu.Unlock()

	if d.cache != nil {
		if err := d.cache.Set(ctx, currentSessionKeyPrefix+userID, sessionID, currentSessionCacheTTL); err != nil {
			log.Printf("[SessionDirectory] Warning: redis write failed user=%s session=%s: %v", userID, sessionID, err)
		}
	}

	if err := d.store.SetCurrentSession(ctx, userID, sessionID); err != nil {
		log.Printf("[SessionDirectory] Warning: failed to persist current pointer user=%s session=%s: %v", userID, sessionID, err)
	}
}

// Create creates a session record and installs it as current.
func (d *SessionDirectory) Create(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	if title == "" {
		title = model.DefaultSessionTitle
	}

	now := time.Now().UTC()
	session := &model.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.store.CreateSession(ctx, session); err != nil {
		return nil, wrapStoreErr("create session", err)
	}

	d.SetCurrent(ctx, userID, session.ID)
	return session, nil
}

// List returns the user's sessions sorted by created_at descending.
func (d *SessionDirectory) List(ctx context.Context, userID string) ([]model.ChatSession, error) {
	sessions, err := d.store.ListSessions(ctx, userID)
	if err != nil {
		return nil, wrapStoreErr("list sessions", err)
	}
	return sessions, nil
}

// Get fetches a single session.
func (d *SessionDirectory) Get(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	session, err := d.store.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, wrapStoreErr("get session", err)
	}
	return session, nil
}

// Rename updates the session title.
func (d *SessionDirectory) Rename(ctx context.Context, userID, sessionID, title string) error {
	if err := d.store.RenameSession(ctx, userID, sessionID, title); err != nil {
		return wrapStoreErr("rename session", err)
	}
	return nil
}

// Delete removes the session and all of its messages. When the deleted
// session was current, a replacement is created and installed immediately:
// a user is never left without a current session. Deleting a session that
// is already gone is an idempotent no-op.
func (d *SessionDirectory) Delete(ctx context.Context, userID, sessionID string) error {
	wasCurrent := d.isCurrent(ctx, userID, sessionID)

	// Messages first: a crash between the two steps leaves an empty session,
	// which the reaper (or a retry) finishes off.
	if err := d.messages.DeleteAll(ctx, userID, sessionID); err != nil {
		return err
	}

	if err := d.store.DeleteSession(ctx, userID, sessionID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			log.Printf("[SessionDirectory] Delete of missing session user=%s session=%s treated as done", userID, sessionID)
		} else {
			return wrapStoreErr("delete session", err)
		}
	}

	d.forget(userID, sessionID)

	if wasCurrent {
		if _, err := d.Create(ctx, userID, model.DefaultSessionTitle); err != nil {
			return fmt.Errorf("replace current session: %w", err)
		}
	}
	return nil
}

// ReapEmpty deletes every session of the user that holds zero messages, so
// listings never surface empty conversations. Running it twice in a row is
// a no-op the second time.
func (d *SessionDirectory) ReapEmpty(ctx context.Context, userID string) error {
	sessions, err := d.List(ctx, userID)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		messages, err := d.messages.List(ctx, userID, session.ID)
		if err != nil {
			log.Printf("[SessionDirectory] Warning: reap skipped user=%s session=%s: %v", userID, session.ID, err)
			continue
		}
		if len(messages) > 0 {
			continue
		}

		if err := d.store.DeleteSession(ctx, userID, session.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
			log.Printf("[SessionDirectory] Warning: reap failed user=%s session=%s: %v", userID, session.ID, err)
			continue
		}
		d.forget(userID, session.ID)
	}
	return nil
}

// sessionExists is the liveness probe behind pointer resolution.
func (d *SessionDirectory) sessionExists(ctx context.Context, userID, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	_, err := d.store.GetSession(ctx, userID, sessionID)
	return err == nil
}

func (d *SessionDirectory) isCurrent(ctx context.Context, userID, sessionID string) bool {
	d.mu.RLock()
	local, ok := d.local[userID]
	d.mu.RUnlock()
	if ok {
		return local == sessionID
	}

	user, err := d.store.GetUser(ctx, userID)
	if err != nil || user.CurrentSessionID == nil {
		return false
	}
	return *user.CurrentSessionID == sessionID
}

// forget drops cache entries that point at the given session.
func (d *SessionDirectory) forget(userID, sessionID string) {
	d.mu.Lock()
	if d.local[userID] == sessionID {
		delete(d.local, userID)
	}
	d.mu.Unlock()

	if d.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		cached, err := d.cache.Get(ctx, currentSessionKeyPrefix+userID)
		if err == nil && cached == sessionID {
			if err := d.cache.Delete(ctx, currentSessionKeyPrefix+userID); err != nil {
				log.Printf("[SessionDirectory] Warning: redis delete failed user=%s: %v", userID, err)
			}
		}
	}
}
