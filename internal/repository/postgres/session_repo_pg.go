package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/repository/ports"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Save(ctx context.Context, session domain.Session) (*domain.Session, error) {
	const query = `
        INSERT INTO browser_sessions (session_key, token, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (session_key) DO UPDATE
        SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = NOW()
        RETURNING session_key, token, created_at, updated_at, expires_at
    `
	row := r.db.QueryRowxContext(ctx, query, session.Key, session.Token, session.ExpiresAt)
	var saved domain.Session
	if err := row.StructScan(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *SessionRepository) FindActive(ctx context.Context, key string) (*domain.Session, error) {
	const query = `
        SELECT session_key, token, created_at, updated_at, expires_at
        FROM browser_sessions
        WHERE session_key = $1 AND (expires_at IS NULL OR expires_at > NOW())
    `
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, key); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM browser_sessions WHERE session_key = $1`
	result, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PurgeExpired removes credentials whose expiry has passed.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM browser_sessions WHERE expires_at IS NOT NULL AND expires_at <= NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
