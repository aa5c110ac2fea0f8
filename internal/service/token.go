package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/divinecoid/sabkabazaar/pkg/config/keys"
)

// TokenIssuer signs and verifies HS256 bearer tokens. The kid header names
// the key version so tokens survive a key rotation until they expire.
type TokenIssuer struct {
	keys *keys.KeyManager
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenIssuer(km *keys.KeyManager, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{keys: km, ttl: ttl, now: time.Now}
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (t *TokenIssuer) Issue(userID string) (*Session, error) {
	key := t.keys.GetCurrentKey()
	if key == nil {
		return nil, errors.New("no signing key available")
	}

	now := t.now()
	expiresAt := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	token.Header["kid"] = key.Version

	signed, err := token.SignedString(key.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: expiresAt.UTC()}, nil
}

// Verify checks signature and expiry and returns the subject (user id).
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		key, ok := t.keys.Lookup(kid)
		if !ok {
			return nil, fmt.Errorf("unknown key version %q", kid)
		}
		return key.Key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
