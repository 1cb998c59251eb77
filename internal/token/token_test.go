package token

import (
	"strings"
	"testing"
	"time"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestVerificationRoundTrip(t *testing.T) {
	e := newEngine(t)
	claims := VerificationClaims{UserID: 42, PasswordHash: "$argon2id$v=19$..."}

	tok := e.Issue(PurposeVerification, claims)
	if tok == "" {
		t.Fatal("empty token")
	}
	if !e.Verify(PurposeVerification, claims, tok) {
		t.Fatal("freshly issued token did not verify")
	}
}

func TestVerificationRejectsChangedFields(t *testing.T) {
	e := newEngine(t)
	claims := VerificationClaims{UserID: 42, PasswordHash: "hash-a"}
	tok := e.Issue(PurposeVerification, claims)

	if e.Verify(PurposeVerification, VerificationClaims{UserID: 43, PasswordHash: "hash-a"}, tok) {
		t.Error("token verified for a different user")
	}
	// Password change is the invalidation mechanism.
	if e.Verify(PurposeVerification, VerificationClaims{UserID: 42, PasswordHash: "hash-b"}, tok) {
		t.Error("token survived a password change")
	}
}

func TestPurposesAreIsolated(t *testing.T) {
	e := newEngine(t)
	vc := VerificationClaims{UserID: 7, PasswordHash: "h"}
	tok := e.Issue(PurposeVerification, vc)

	// Even with an identical hash input, a verification token must not
	// pass as a reset token.
	if e.Verify(PurposeReset, vc, tok) {
		t.Fatal("verification token accepted for reset purpose")
	}
}

func TestResetBindsEmail(t *testing.T) {
	e := newEngine(t)
	claims := ResetClaims{
		Email:              "a@sliet.ac.in",
		VerificationClaims: VerificationClaims{UserID: 9, PasswordHash: "h"},
	}
	tok := e.Issue(PurposeReset, claims)

	if !e.Verify(PurposeReset, claims, tok) {
		t.Fatal("reset token did not verify")
	}
	changed := claims
	changed.Email = "b@sliet.ac.in"
	if e.Verify(PurposeReset, changed, tok) {
		t.Fatal("reset token survived an email change")
	}
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	e := newEngine(t)
	claims := VerificationClaims{UserID: 1, PasswordHash: "h"}

	for _, tok := range []string{"", "not-hex", strings.Repeat("0", 63)} {
		if e.Verify(PurposeVerification, claims, tok) {
			t.Errorf("malformed token %q verified", tok)
		}
	}
}

func TestEnginesDoNotShareSeeds(t *testing.T) {
	e1 := newEngine(t)
	e2 := newEngine(t)
	claims := VerificationClaims{UserID: 1, PasswordHash: "h"}

	if e2.Verify(PurposeVerification, claims, e1.Issue(PurposeVerification, claims)) {
		t.Fatal("token from another engine instance verified")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	raw, err := NewSession(secret, 42, "pw-hash", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseSession(secret, raw)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.PasswordHash != "pw-hash" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSessionExpiry(t *testing.T) {
	secret := []byte("test-secret")
	raw, err := NewSession(secret, 42, "pw-hash", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSession(secret, raw); err == nil {
		t.Fatal("expired session parsed")
	}
}

func TestSessionWrongSecret(t *testing.T) {
	raw, err := NewSession([]byte("secret-a"), 42, "pw-hash", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSession([]byte("secret-b"), raw); err == nil {
		t.Fatal("session signed with a different secret parsed")
	}
}

func TestSessionTamper(t *testing.T) {
	secret := []byte("test-secret")
	raw, err := NewSession(secret, 42, "pw-hash", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tampered := raw[:len(raw)-2] + "xx"
	if _, err := ParseSession(secret, tampered); err == nil {
		t.Fatal("tampered session parsed")
	}
}
