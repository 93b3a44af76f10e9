package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/repository/ports"
	"github.com/njprem/recipe_browser/internal/util"
)

var (
	ErrSessionRequired = errors.New("browser session required")
	ErrTokenRequired   = errors.New("token is required")
	ErrTokenExpired    = errors.New("token has expired")
)

// SessionService is the browser's persisted local storage: it keeps the
// bearer credential of each session under the fixed key "token".
type SessionService struct {
	repo   ports.SessionRepository
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionService(repo ports.SessionRepository, ttl time.Duration, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{repo: repo, ttl: ttl, logger: logger, now: time.Now}
}

// StoreToken saves token for sessionID. The credential expires at the JWT exp
// claim or after the session TTL, whichever comes first.
func (s *SessionService) StoreToken(ctx context.Context, sessionID, token string) (*domain.Session, error) {
	if !util.ValidSessionID(sessionID) {
		return nil, ErrSessionRequired
	}
	token = strings.TrimSpace(token)
	now := s.now()
	info, err := util.CheckToken(token, now)
	switch {
	case errors.Is(err, util.ErrEmptyToken):
		return nil, ErrTokenRequired
	case errors.Is(err, util.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, err
	}

	var expiresAt *time.Time
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		expiresAt = &exp
	}
	if info.ExpiresAt != nil && (expiresAt == nil || info.ExpiresAt.Before(*expiresAt)) {
		exp := *info.ExpiresAt
		expiresAt = &exp
	}

	saved, err := s.repo.Save(ctx, domain.Session{
		Key:       util.HashSessionKey(sessionID),
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("credential stored", "jwt", info.JWT, "expires_at", expiresAt)
	return saved, nil
}

// Token reads the credential of sessionID. Missing, expired and unreadable
// credentials all mean "not logged in".
func (s *SessionService) Token(ctx context.Context, sessionID string) (string, bool) {
	if !util.ValidSessionID(sessionID) {
		return "", false
	}
	session, err := s.repo.FindActive(ctx, util.HashSessionKey(sessionID))
	if err != nil {
		if !isNotFound(err) {
			s.logger.Warn("credential lookup failed", "error", err)
		}
		return "", false
	}
	if !session.Active(s.now()) {
		return "", false
	}
	return session.Token, true
}

// Clear forgets the credential of sessionID. Clearing an absent credential is not an error.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	if !util.ValidSessionID(sessionID) {
		return ErrSessionRequired
	}
	if err := s.repo.Delete(ctx, util.HashSessionKey(sessionID)); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}
