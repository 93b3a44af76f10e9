package domain

import (
	"time"
)

// SessionTokenKey is the fixed key the bearer credential is stored under.
const SessionTokenKey = "token"

// Session is the persisted credential of one browser session. Key is the
// hashed session id, never the raw cookie value.
type Session struct {
	Key       string     `db:"session_key" json:"-"`
	Token     string     `db:"token" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

// Active reports whether the credential may still be used at now.
func (s *Session) Active(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}
