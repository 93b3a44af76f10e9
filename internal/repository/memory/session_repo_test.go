package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/njprem/recipe_browser/internal/domain"
)

func TestSessionRepoSaveAndFind(t *testing.T) {
	repo := NewSessionRepo()
	ctx := context.Background()

	if _, err := repo.FindActive(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	first, err := repo.Save(ctx, domain.Session{Key: "k1", Token: "tok-1"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	second, err := repo.Save(ctx, domain.Session{Key: "k1", Token: "tok-2"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected overwrite to keep created_at")
	}

	found, err := repo.FindActive(ctx, "k1")
	if err != nil {
		t.Fatalf("FindActive returned error: %v", err)
	}
	if found.Token != "tok-2" {
		t.Fatalf("expected latest token, got %q", found.Token)
	}
}

func TestSessionRepoExpiry(t *testing.T) {
	repo := NewSessionRepo()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	repo.Save(ctx, domain.Session{Key: "old", Token: "t", ExpiresAt: &past})
	repo.Save(ctx, domain.Session{Key: "new", Token: "t", ExpiresAt: &future})

	if _, err := repo.FindActive(ctx, "old"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected expired session to be hidden, got %v", err)
	}
	if _, err := repo.FindActive(ctx, "new"); err != nil {
		t.Fatalf("expected active session, got %v", err)
	}

	removed, err := repo.PurgeExpired(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 purged session, got %d (%v)", removed, err)
	}
}

func TestSessionRepoDelete(t *testing.T) {
	repo := NewSessionRepo()
	ctx := context.Background()
	repo.Save(ctx, domain.Session{Key: "k", Token: "t"})

	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := repo.Delete(ctx, "k"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows on second delete, got %v", err)
	}
}
