package services

import (
	"context"
	"errors"
	"log"

	"github.com/sankat-mitra/api/model"
)

// LifecycleController orchestrates session creation, selection and removal.
// It holds no state of its own; every externally observable side effect is
// recorded synchronously before a call returns.
type LifecycleController struct {
	directory *SessionDirectory
	messages  *MessageStore
}

// NewLifecycleController wires the controller.
func NewLifecycleController(directory *SessionDirectory, messages *MessageStore) *LifecycleController {
	return &LifecycleController{directory: directory, messages: messages}
}

// StartOrResume resolves the user's current session, creating one when
// nothing valid exists, and returns its record.
func (l *LifecycleController) StartOrResume(ctx context.Context, userID string) (*model.ChatSession, error) {
	sessionID, err := l.directory.GetCurrent(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := l.directory.Get(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The session vanished between resolution and fetch (another
			// device deleted it); resolve again, which creates a fresh one.
			sessionID, err = l.directory.GetCurrent(ctx, userID)
			if err != nil {
				return nil, err
			}
			return l.directory.Get(ctx, userID, sessionID)
		}
		return nil, err
	}
	return session, nil
}

// Create starts a fresh session and makes it current.
func (l *LifecycleController) Create(ctx context.Context, userID string) (*model.ChatSession, error) {
	return l.directory.Create(ctx, userID, model.DefaultSessionTitle)
}

// Rename retitles an existing session.
func (l *LifecycleController) Rename(ctx context.Context, userID, sessionID, title string) error {
	return l.directory.Rename(ctx, userID, sessionID, title)
}

// Select makes the given session current. Selecting a session another
// device already deleted is not an error: the pointer simply stays on the
// healed current session.
func (l *LifecycleController) Select(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	session, err := l.directory.Get(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("[Lifecycle] Select of missing session user=%s session=%s, keeping current", userID, sessionID)
			return l.StartOrResume(ctx, userID)
		}
		return nil, err
	}

	l.directory.SetCurrent(ctx, userID, sessionID)
	return session, nil
}

// Remove deletes the session with its messages; the directory guarantees a
// replacement current session when needed. Removing an already-gone session
// is an idempotent no-op.
func (l *LifecycleController) Remove(ctx context.Context, userID, sessionID string) error {
	if err := l.directory.Delete(ctx, userID, sessionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// Sessions lists the user's real (non-empty) sessions, newest first.
// Empty leftovers are reaped before listing so they are never surfaced.
func (l *LifecycleController) Sessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	if err := l.directory.ReapEmpty(ctx, userID); err != nil {
		log.Printf("[Lifecycle] Warning: reap before listing failed user=%s: %v", userID, err)
	}
	return l.directory.List(ctx, userID)
}

// Transcript returns the ordered message log of one session.
func (l *LifecycleController) Transcript(ctx context.Context, userID, sessionID string) ([]model.ChatMessage, error) {
	if _, err := l.directory.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return l.messages.List(ctx, userID, sessionID)
}
