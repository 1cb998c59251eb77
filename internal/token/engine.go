// Package token derives and checks the stateless credential tokens:
// seed-keyed verification and password-reset proofs plus the signed
// session token. Nothing issued here is ever stored server side.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

type Purpose int

const (
	PurposeVerification Purpose = iota
	PurposeReset
)

// Claims is a record that can be deterministically serialized into
// hash input: numeric ids first as 8-byte big-endian, then string
// fields as raw bytes, in declaration order.
type Claims interface {
	hashInput() []byte
}

// VerificationClaims bind a token to the subject's current password
// hash: changing the password invalidates every outstanding token.
type VerificationClaims struct {
	UserID       int64
	PasswordHash string
}

func (c VerificationClaims) hashInput() []byte {
	buf := make([]byte, 0, 8+len(c.PasswordHash))
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.UserID))
	buf = append(buf, c.PasswordHash...)
	return buf
}

// ResetClaims additionally bind the account email, so a reset link
// dies if the address it was mailed to is changed.
type ResetClaims struct {
	Email string
	VerificationClaims
}

func (c ResetClaims) hashInput() []byte {
	buf := make([]byte, 0, 8+len(c.Email)+len(c.PasswordHash))
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.UserID))
	buf = append(buf, c.Email...)
	buf = append(buf, c.PasswordHash...)
	return buf
}

// Engine holds one random seed per token purpose. Seeds live only in
// memory: a process restart invalidates all outstanding verification
// and reset tokens. That is the intended trade-off, not a bug.
type Engine struct {
	seeds map[Purpose][]byte
}

func NewEngine() (*Engine, error) {
	e := &Engine{seeds: make(map[Purpose][]byte, 2)}
	for _, p := range []Purpose{PurposeVerification, PurposeReset} {
		seed := make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("generate token seed: %w", err)
		}
		e.seeds[p] = seed
	}
	return e, nil
}

// Issue derives the token for claims under the given purpose.
func (e *Engine) Issue(p Purpose, c Claims) string {
	mac := hmac.New(sha256.New, e.seeds[p])
	mac.Write(c.hashInput())
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the token from the subject's current state and
// compares in constant time. There is no expiry for these purposes:
// a token stays valid until the password (or email, for resets)
// changes, or the process restarts.
func (e *Engine) Verify(p Purpose, now Claims, token string) bool {
	got, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, e.seeds[p])
	mac.Write(now.hashInput())
	return hmac.Equal(got, mac.Sum(nil))
}
