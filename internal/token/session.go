package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims carry the user id, a snapshot of the password hash at
// issue time, and the expiry. The snapshot is the forced-logout hook:
// the principal resolver rejects the token once the stored hash moves.
type SessionClaims struct {
	UserID       int64  `json:"sub"`
	PasswordHash string `json:"pwh"`
	jwt.RegisteredClaims
}

func NewSession(secret []byte, userID int64, passwordHash string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:       userID,
		PasswordHash: passwordHash,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

func ParseSession(secret []byte, raw string) (*SessionClaims, error) {
	tok, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*SessionClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
