package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sankat-mitra/api/model"
)

// MemoryStore is an in-memory Storage implementation. It backs service tests
// and local development without Postgres (STORE_DRIVER=memory); semantics
// mirror the GORM store, including server-assigned Seq/Timestamp on append.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*model.User
	sessions map[string]*model.ChatSession   // session id -> session
	messages map[string][]model.ChatMessage  // session id -> ordered messages
	cronLogs []model.CronJobLog
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*model.User),
		sessions: make(map[string]*model.ChatSession),
		messages: make(map[string][]model.ChatMessage),
	}
}

func (s *MemoryStore) Init() error        { return nil }
func (s *MemoryStore) HealthCheck() error { return nil }
func (s *MemoryStore) Close() error       { return nil }

func (s *MemoryStore) UpsertUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[user.ID]; ok {
		existing.Email = user.Email
		existing.Name = user.Name
		existing.Language = user.Language
		existing.UpdatedAt = time.Now().UTC()
		return nil
	}

	copied := *user
	now := time.Now().UTC()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	s.users[user.ID] = &copied
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SetCurrentSession(_ context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	id := sessionID
	user.CurrentSessionID = &id
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) CreateSession(_ context.Context, session *model.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = session.CreatedAt

	copied := *session
	s.sessions[session.ID] = &copied
	s.messages[session.ID] = make([]model.ChatMessage, 0, 16)
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, userID, sessionID string) (*model.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *MemoryStore) ListSessions(_ context.Context, userID string) ([]model.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []model.ChatSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, *session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *MemoryStore) RenameSession(_ context.Context, userID, sessionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return ErrNotFound
	}
	session.Title = title
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) TouchSession(_ context.Context, userID, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil
	}
	touched := at
	session.LastMessageAt = &touched
	if at.After(session.UpdatedAt) {
		session.UpdatedAt = at
	}
	return nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	return nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, msg *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[msg.SessionID]; !ok {
		return ErrNotFound
	}

	log := s.messages[msg.SessionID]
	now := time.Now().UTC()
	if len(log) == 0 {
		msg.Seq = 1
		msg.Timestamp = now
	} else {
		last := log[len(log)-1]
		msg.Seq = last.Seq + 1
		msg.Timestamp = now
		if !now.After(last.Timestamp) {
			msg.Timestamp = last.Timestamp.Add(time.Microsecond)
		}
	}
	msg.CreatedAt = msg.Timestamp
	msg.UpdatedAt = msg.Timestamp

	s.messages[msg.SessionID] = append(log, *msg)
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, userID, sessionID string) ([]model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.messages[sessionID]
	if !ok {
		return []model.ChatMessage{}, nil
	}
	copied := make([]model.ChatMessage, 0, len(log))
	for _, msg := range log {
		if msg.UserID == userID {
			copied = append(copied, msg)
		}
	}
	return copied, nil
}

func (s *MemoryStore) CountMessages(_ context.Context, userID, sessionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, msg := range s.messages[sessionID] {
		if msg.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) DeleteMessageBatch(_ context.Context, userID, sessionID string, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.messages[sessionID]
	if !ok || limit <= 0 {
		return 0, nil
	}

	kept := log[:0]
	var deleted int64
	for _, msg := range log {
		if msg.UserID == userID && deleted < int64(limit) {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	s.messages[sessionID] = kept
	return deleted, nil
}

func (s *MemoryStore) RecordCronJobLog(_ context.Context, entry *model.CronJobLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uint(len(s.cronLogs) + 1)
	entry.CreatedAt = time.Now().UTC()
	s.cronLogs = append(s.cronLogs, *entry)
	return nil
}

func (s *MemoryStore) PurgeCronJobLogs(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cronLogs[:0]
	var purged int64
	for _, entry := range s.cronLogs {
		if entry.CreatedAt.Before(olderThan) {
			purged++
			continue
		}
		kept = append(kept, entry)
	}
	s.cronLogs = kept
	return purged, nil
}
