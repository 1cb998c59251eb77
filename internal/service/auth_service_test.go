package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/platform/mailer"
	"github.com/techfest-sliet/festd/internal/token"
	"github.com/techfest-sliet/festd/pkg/config"
)

// captureMailer records the links handed to it so tests can replay
// verification and reset flows end to end.
type captureMailer struct {
	verifyLinks []string
	resetLinks  []string
}

var _ mailer.Service = (*captureMailer)(nil)

func (m *captureMailer) Send(string, string, string, string, string) (string, error) {
	return "", nil
}

func (m *captureMailer) SendVerification(_, _, link string) error {
	m.verifyLinks = append(m.verifyLinks, link)
	return nil
}

func (m *captureMailer) SendPasswordReset(_, _, link string) error {
	m.resetLinks = append(m.resetLinks, link)
	return nil
}

func authFixture(t *testing.T) (*AuthService, *fakeUsers, *captureMailer, *token.Engine) {
	t.Helper()
	users := newFakeUsers()
	engine, err := token.NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	mail := &captureMailer{}
	cfg := config.AuthConfig{
		JWTSecret:         "test-secret",
		SessionTTL:        24 * time.Hour,
		CookieMaxAge:      12 * time.Hour,
		InstitutionDomain: "sliet.ac.in",
	}
	return NewAuthService(users, engine, mail, nil, cfg, "http://localhost:5173"), users, mail, engine
}

func studentForm(email string) StudentSignUp {
	return StudentSignUp{
		Name:     "Asha",
		DOB:      time.Date(2004, 5, 1, 0, 0, 0, 0, time.UTC),
		Email:    email,
		Phone:    "9999999999",
		Password: "hunter2hunter2",
		College:  "SLIET",
		RegNo:    "2230001",
		Dept:     domain.DeptCS,
	}
}

func TestStudentSignUpRequiresInstitutionDomain(t *testing.T) {
	svc, _, _, _ := authFixture(t)
	_, err := svc.SignUpStudent(context.Background(), studentForm("asha@gmail.com"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestStudentSignUpAndSignIn(t *testing.T) {
	svc, users, mail, _ := authFixture(t)
	ctx := context.Background()

	u, err := svc.SignUpStudent(ctx, studentForm("asha@sliet.ac.in"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Verified {
		t.Fatal("fresh account is verified")
	}
	if len(mail.verifyLinks) != 1 {
		t.Fatalf("verification mails = %d, want 1", len(mail.verifyLinks))
	}
	if _, err := users.FindStudent(ctx, u.ID); err != nil {
		t.Fatalf("student row missing: %v", err)
	}

	if _, _, err := svc.SignIn(ctx, "asha@sliet.ac.in", "hunter2hunter2"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "asha@sliet.ac.in", "wrong"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("wrong password: %v, want ErrUnauthenticated", err)
	}
	if _, _, err := svc.SignIn(ctx, "ghost@sliet.ac.in", "hunter2hunter2"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("unknown account: %v, want ErrUnauthenticated", err)
	}
}

func TestVerifyFlow(t *testing.T) {
	svc, users, _, engine := authFixture(t)
	ctx := context.Background()

	u, err := svc.SignUpStudent(ctx, studentForm("asha@sliet.ac.in"))
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := users.FindByID(ctx, u.ID)
	tok := engine.Issue(token.PurposeVerification, token.VerificationClaims{
		UserID: u.ID, PasswordHash: stored.PasswordHash,
	})

	if err := svc.Verify(ctx, u.ID, "deadbeef"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("bogus token: %v, want ErrUnauthenticated", err)
	}
	if err := svc.Verify(ctx, u.ID, tok); err != nil {
		t.Fatalf("verify: %v", err)
	}
	after, _ := users.FindByID(ctx, u.ID)
	if !after.Verified {
		t.Fatal("account still unverified")
	}
	// Verifying again with the same token stays a no-op success.
	if err := svc.Verify(ctx, u.ID, tok); err != nil {
		t.Fatalf("repeat verify: %v", err)
	}
}

func TestResendVerificationAfterVerify(t *testing.T) {
	svc, users, _, engine := authFixture(t)
	ctx := context.Background()

	u, err := svc.SignUpStudent(ctx, studentForm("asha@sliet.ac.in"))
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := users.FindByID(ctx, u.ID)
	tok := engine.Issue(token.PurposeVerification, token.VerificationClaims{
		UserID: u.ID, PasswordHash: stored.PasswordHash,
	})
	if err := svc.Verify(ctx, u.ID, tok); err != nil {
		t.Fatal(err)
	}
	if err := svc.ResendVerification(ctx, "asha@sliet.ac.in"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("resend after verify: %v, want ErrConflict", err)
	}
}

func TestResetPasswordInvalidatesOldToken(t *testing.T) {
	svc, users, mail, engine := authFixture(t)
	ctx := context.Background()

	u, err := svc.SignUpStudent(ctx, studentForm("asha@sliet.ac.in"))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SendReset(ctx, "asha@sliet.ac.in"); err != nil {
		t.Fatal(err)
	}
	if len(mail.resetLinks) != 1 {
		t.Fatalf("reset mails = %d, want 1", len(mail.resetLinks))
	}

	stored, _ := users.FindByID(ctx, u.ID)
	tok := engine.Issue(token.PurposeReset, token.ResetClaims{
		Email:              stored.Email,
		VerificationClaims: token.VerificationClaims{UserID: u.ID, PasswordHash: stored.PasswordHash},
	})

	if err := svc.ResetPassword(ctx, u.ID, tok, "newpassword123"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "asha@sliet.ac.in", "newpassword123"); err != nil {
		t.Fatalf("sign in with new password: %v", err)
	}
	// The hash moved, so the same token is now dead.
	if err := svc.ResetPassword(ctx, u.ID, tok, "anotherpass123"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("replayed reset token: %v, want ErrUnauthenticated", err)
	}
}
