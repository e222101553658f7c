package session

import (
	"context"
	"sync"
	"time"

	"tripbot/models"
)

// MemoryStore is an in-process Store used by tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session)}
}

func (s *MemoryStore) Load(ctx context.Context, userID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		cp := sess
		return &cp, nil
	}
	return models.NewSession(userID), nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *models.Session) error {
	sess.LastUpdatedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = *sess
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
