package ports

import (
	"context"

	"github.com/njprem/recipe_browser/internal/domain"
)

// SessionRepository persists the bearer credential of a browser session.
// Lookups of unknown or expired keys return sql.ErrNoRows.
type SessionRepository interface {
	Save(ctx context.Context, session domain.Session) (*domain.Session, error)
	FindActive(ctx context.Context, key string) (*domain.Session, error)
	Delete(ctx context.Context, key string) error
}
