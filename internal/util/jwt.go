package util

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyToken   = errors.New("token cannot be empty")
	ErrTokenExpired = errors.New("token expired")
)

// TokenInfo is what the browser can learn about a bearer credential without
// holding the signing key. The recipe API remains the verifier.
type TokenInfo struct {
	JWT       bool
	Subject   string
	ExpiresAt *time.Time
}

// Expired reports whether the token carried an exp claim before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// InspectToken reads the registered claims of a JWT without verifying its
// signature. Tokens that are not JWTs are treated as opaque and get no expiry.
func InspectToken(token string) (TokenInfo, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenInfo{}, ErrEmptyToken
	}
	if strings.Count(token, ".") != 2 {
		return TokenInfo{}, nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, nil
	}
	info := TokenInfo{JWT: true, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	return info, nil
}

// CheckToken inspects token and rejects it when it is empty or already expired.
func CheckToken(token string, now time.Time) (TokenInfo, error) {
	info, err := InspectToken(token)
	if err != nil {
		return TokenInfo{}, err
	}
	if info.Expired(now) {
		return info, ErrTokenExpired
	}
	return info, nil
}
