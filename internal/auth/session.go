// Package auth inspects the session token the client presents to the server.
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned for tokens whose exp claim has passed.
var ErrTokenExpired = errors.New("auth token expired")

// Session is what the client learns from its token.
type Session struct {
	Subject   string
	ExpiresAt time.Time // zero when the token never expires
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// LoadPublicKey reads a raw ed25519 public key from file.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(data) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key file %s: expected %d bytes, got %d", path, ed25519.PublicKeySize, len(data))
	}
	return ed25519.PublicKey(data), nil
}

// ParseSession reads the token claims. When pub is nil the signature is not
// checked, since only the server holds the signing key; the claims are still
// used to fail fast on an expired token before dialing.
func ParseSession(tokenString string, pub ed25519.PublicKey, now time.Time) (*Session, error) {
	claims := jwt.MapClaims{}
	if pub == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("jwt parse error: %w", err)
		}
	} else {
		t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return pub, nil
		}, jwt.WithTimeFunc(func() time.Time { return now }))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, ErrTokenExpired
			}
			return nil, fmt.Errorf("jwt parse error: %w", err)
		}
		if !t.Valid {
			return nil, fmt.Errorf("invalid token")
		}
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("missing sub in jwt")
	}
	s := &Session{Subject: sub}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp in jwt: %w", err)
	}
	if exp != nil {
		s.ExpiresAt = exp.Time
	}
	if s.Expired(now) {
		return nil, ErrTokenExpired
	}
	return s, nil
}
