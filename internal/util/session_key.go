package util

import (
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// NewSessionID returns a fresh random cookie value.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like a value NewSessionID produced.
func ValidSessionID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.Version() == 4
}

// HashSessionKey derives the storage key of a session id so raw cookie values
// never reach the credential store.
func HashSessionKey(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}
