package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/platform/mailer"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
	"github.com/techfest-sliet/festd/internal/token"
	"github.com/techfest-sliet/festd/pkg/config"
	"github.com/techfest-sliet/festd/pkg/events"
	"github.com/techfest-sliet/festd/pkg/logger"
)

type StudentSignUp struct {
	Name     string            `json:"name"`
	DOB      time.Time         `json:"dob"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone"`
	Password string            `json:"password"`
	College  string            `json:"college"`
	RegNo    string            `json:"registration_number"`
	Dept     domain.Department `json:"department"`
}

type FacultySignUp struct {
	Name     string              `json:"name"`
	DOB      time.Time           `json:"dob"`
	Email    string              `json:"email"`
	Phone    string              `json:"phone"`
	Password string              `json:"password"`
	Title    domain.FacultyTitle `json:"title"`
	Dept     domain.Department   `json:"department"`
}

type AuthService struct {
	users  postgres.UsersRepo
	tokens *token.Engine
	mail   mailer.Service
	bus    events.Publisher
	cfg    config.AuthConfig
	// frontendURL is the base the verification and reset links point at.
	frontendURL string
}

func NewAuthService(users postgres.UsersRepo, tokens *token.Engine, mail mailer.Service, bus events.Publisher, cfg config.AuthConfig, frontendURL string) *AuthService {
	return &AuthService{users: users, tokens: tokens, mail: mail, bus: bus, cfg: cfg, frontendURL: frontendURL}
}

// SignUpStudent registers a student account. Student registration is
// open to institution addresses only; other colleges register through
// the fest desk which provisions accounts directly.
func (s *AuthService) SignUpStudent(ctx context.Context, in StudentSignUp) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if !strings.HasSuffix(strings.ToLower(in.Email), "@"+s.cfg.InstitutionDomain) {
		return nil, fmt.Errorf("%w: registration requires an @%s address", domain.ErrValidation, s.cfg.InstitutionDomain)
	}
	if !in.Dept.Valid() {
		return nil, fmt.Errorf("%w: unknown department", domain.ErrValidation)
	}

	hash, err := argon2id.CreateHash(in.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		DOB:          in.DOB,
		Email:        strings.ToLower(in.Email),
		Phone:        in.Phone,
		Role:         domain.RoleParticipant,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.CreateStudent(ctx, &domain.Student{
		UserID:  u.ID,
		College: in.College,
		RegNo:   in.RegNo,
		Dept:    in.Dept,
	}); err != nil {
		return nil, err
	}

	s.sendVerificationMail(u)
	s.publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID: u.ID, Email: u.Email, Role: string(u.Role), RegisteredAt: time.Now(),
	})
	return u, nil
}

func (s *AuthService) SignUpFaculty(ctx context.Context, in FacultySignUp) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if !in.Title.Valid() || !in.Dept.Valid() {
		return nil, fmt.Errorf("%w: unknown title or department", domain.ErrValidation)
	}

	hash, err := argon2id.CreateHash(in.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		DOB:          in.DOB,
		Email:        strings.ToLower(in.Email),
		Phone:        in.Phone,
		Role:         domain.RoleParticipant,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.CreateFaculty(ctx, &domain.Faculty{
		UserID: u.ID,
		Title:  in.Title,
		Dept:   in.Dept,
	}); err != nil {
		return nil, err
	}

	s.sendVerificationMail(u)
	s.publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID: u.ID, Email: u.Email, Role: string(u.Role), RegisteredAt: time.Now(),
	})
	return u, nil
}

// SignIn checks credentials and mints a session token. Credential
// failures and unknown accounts report the same error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", nil, domain.ErrUnauthenticated
	}
	ok, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil || !ok {
		return "", nil, domain.ErrUnauthenticated
	}
	tok, err := token.NewSession([]byte(s.cfg.JWTSecret), u.ID, u.PasswordHash, s.cfg.SessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return tok, u, nil
}

// Verify consumes an emailed verification token.
func (s *AuthService) Verify(ctx context.Context, userID int64, tok string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	claims := token.VerificationClaims{UserID: u.ID, PasswordHash: u.PasswordHash}
	if !s.tokens.Verify(token.PurposeVerification, claims, tok) {
		return fmt.Errorf("%w: invalid verification token", domain.ErrUnauthenticated)
	}
	if u.Verified {
		return nil
	}
	if err := s.users.SetVerified(ctx, u.ID); err != nil {
		return err
	}
	s.publish(ctx, events.UserVerified, events.UserVerifiedEvent{UserID: u.ID, VerifiedAt: time.Now()})
	return nil
}

// ResendVerification mails a fresh verification link. Already
// verified accounts get a conflict so the frontend can say so.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if u.Verified {
		return fmt.Errorf("%w: account already verified", domain.ErrConflict)
	}
	s.sendVerificationMail(u)
	return nil
}

// SendReset mails a password reset link. The token binds the current
// email and password hash, so it dies the moment either changes.
func (s *AuthService) SendReset(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	claims := token.ResetClaims{
		Email:              u.Email,
		VerificationClaims: token.VerificationClaims{UserID: u.ID, PasswordHash: u.PasswordHash},
	}
	link := s.link("/reset-password", u.ID, s.tokens.Issue(token.PurposeReset, claims))
	if err := s.mail.SendPasswordReset(u.Email, u.Name, link); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return nil
}

// ResetPassword applies a reset token. Re-hashing the password moves
// the stored hash, which invalidates every outstanding session and
// credential token for the account.
func (s *AuthService) ResetPassword(ctx context.Context, userID int64, tok, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password must not be empty", domain.ErrValidation)
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	claims := token.ResetClaims{
		Email:              u.Email,
		VerificationClaims: token.VerificationClaims{UserID: u.ID, PasswordHash: u.PasswordHash},
	}
	if !s.tokens.Verify(token.PurposeReset, claims, tok) {
		return fmt.Errorf("%w: invalid reset token", domain.ErrUnauthenticated)
	}
	hash, err := argon2id.CreateHash(newPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPasswordHash(ctx, u.ID, hash); err != nil {
		return err
	}
	s.publish(ctx, events.PasswordReset, events.UserVerifiedEvent{UserID: u.ID, VerifiedAt: time.Now()})
	return nil
}

func (s *AuthService) sendVerificationMail(u *domain.User) {
	claims := token.VerificationClaims{UserID: u.ID, PasswordHash: u.PasswordHash}
	link := s.link("/verify", u.ID, s.tokens.Issue(token.PurposeVerification, claims))
	if err := s.mail.SendVerification(u.Email, u.Name, link); err != nil {
		logger.Error("send verification mail", "user_id", u.ID, "error", err)
	}
}

func (s *AuthService) link(path string, userID int64, tok string) string {
	q := url.Values{}
	q.Set("id", fmt.Sprint(userID))
	q.Set("token", tok)
	return fmt.Sprintf("%s%s?%s", strings.TrimRight(s.frontendURL, "/"), path, q.Encode())
}

func (s *AuthService) publish(ctx context.Context, subject string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "publish event", "subject", subject, "error", err)
	}
}
