// Package memory keeps browser credentials in process. It backs the browser
// when no database is configured.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/repository/ports"
)

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewSessionRepo() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session), now: time.Now}
}

func (r *SessionRepository) Save(_ context.Context, session domain.Session) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.sessions[session.Key]; ok {
		session.CreatedAt = existing.CreatedAt
	} else {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	r.sessions[session.Key] = session
	saved := session
	return &saved, nil
}

func (r *SessionRepository) FindActive(_ context.Context, key string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[key]
	if !ok || !session.Active(r.now()) {
		return nil, sql.ErrNoRows
	}
	return &session, nil
}

func (r *SessionRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[key]; !ok {
		return sql.ErrNoRows
	}
	delete(r.sessions, key)
	return nil
}

// PurgeExpired removes credentials whose expiry has passed.
func (r *SessionRepository) PurgeExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var removed int64
	for key, session := range r.sessions {
		if session.ExpiresAt != nil && !now.Before(*session.ExpiresAt) {
			delete(r.sessions, key)
			removed++
		}
	}
	return removed, nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
