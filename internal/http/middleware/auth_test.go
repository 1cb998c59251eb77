package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/http/middleware"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
	"github.com/techfest-sliet/festd/internal/token"
)

// ---------- Mocks ----------

type mockUsers struct {
	byID map[int64]*domain.User
}

var _ postgres.UsersRepo = (*mockUsers)(nil)

func newMockUsers(users ...*domain.User) *mockUsers {
	m := &mockUsers{byID: make(map[int64]*domain.User)}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *mockUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) { return u, nil }
func (m *mockUsers) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (m *mockUsers) UpdateProfile(context.Context, int64, postgres.ProfilePatch) error { return nil }
func (m *mockUsers) SetVerified(context.Context, int64) error                          { return nil }
func (m *mockUsers) SetRole(context.Context, int64, domain.Role) error                 { return nil }
func (m *mockUsers) SetPasswordHash(context.Context, int64, string) error              { return nil }
func (m *mockUsers) SetPhotoHash(context.Context, int64, []byte) error                 { return nil }
func (m *mockUsers) PhotoHash(context.Context, int64) ([]byte, error)                  { return nil, nil }
func (m *mockUsers) CountSuperAdmins(context.Context) (int64, error)                   { return 0, nil }
func (m *mockUsers) CreateStudent(context.Context, *domain.Student) error              { return nil }
func (m *mockUsers) FindStudent(context.Context, int64) (*domain.Student, error) {
	return nil, domain.ErrNotFound
}
func (m *mockUsers) CreateFaculty(context.Context, *domain.Faculty) error { return nil }
func (m *mockUsers) FindFaculty(context.Context, int64) (*domain.Faculty, error) {
	return nil, domain.ErrNotFound
}

// ---------- Helpers ----------

var testSecret = []byte("middleware-test-secret")

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := middleware.Principal(r.Context())
		if u == nil {
			fmt.Fprint(w, "anonymous")
			return
		}
		fmt.Fprintf(w, "user:%d", u.ID)
	})
}

func sessionRequest(t *testing.T, userID int64, passwordHash string, ttl time.Duration) *http.Request {
	t.Helper()
	tok, err := token.NewSession(testSecret, userID, passwordHash, ttl)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tok})
	return req
}

// ---------- Tests ----------

func TestRequireAuthResolvesCookieSession(t *testing.T) {
	users := newMockUsers(&domain.User{ID: 7, Email: "asha@sliet.ac.in", PasswordHash: "hash-v1"})
	auth := middleware.NewAuth(users, testSecret)

	rec := httptest.NewRecorder()
	auth.RequireAuth(echoPrincipal()).ServeHTTP(rec, sessionRequest(t, 7, "hash-v1", time.Hour))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "user:7" {
		t.Fatalf("body = %q, want %q", got, "user:7")
	}
}

func TestRequireAuthRejectsAfterPasswordChange(t *testing.T) {
	u := &domain.User{ID: 7, Email: "asha@sliet.ac.in", PasswordHash: "hash-v1"}
	users := newMockUsers(u)
	auth := middleware.NewAuth(users, testSecret)

	req := sessionRequest(t, 7, "hash-v1", time.Hour)

	// The reset flow stores a new hash; every session minted before
	// this moment carries the old snapshot and must die.
	u.PasswordHash = "hash-v2"

	rec := httptest.NewRecorder()
	auth.RequireAuth(echoPrincipal()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsExpiredSession(t *testing.T) {
	users := newMockUsers(&domain.User{ID: 7, PasswordHash: "hash-v1"})
	auth := middleware.NewAuth(users, testSecret)

	rec := httptest.NewRecorder()
	auth.RequireAuth(echoPrincipal()).ServeHTTP(rec, sessionRequest(t, 7, "hash-v1", -time.Minute))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsMissingAndUnknownSessions(t *testing.T) {
	users := newMockUsers(&domain.User{ID: 7, PasswordHash: "hash-v1"})
	auth := middleware.NewAuth(users, testSecret)
	handler := auth.RequireAuth(echoPrincipal())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	// Valid signature but the account no longer exists.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, 99, "hash-v1", time.Hour))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBearerOverridesCookie(t *testing.T) {
	users := newMockUsers(
		&domain.User{ID: 7, PasswordHash: "hash-v1"},
		&domain.User{ID: 8, PasswordHash: "hash-v1"},
	)
	auth := middleware.NewAuth(users, testSecret)

	req := sessionRequest(t, 7, "hash-v1", time.Hour)
	bearer, err := token.NewSession(testSecret, 8, "hash-v1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	rec := httptest.NewRecorder()
	auth.RequireAuth(echoPrincipal()).ServeHTTP(rec, req)

	if got := rec.Body.String(); got != "user:8" {
		t.Fatalf("body = %q, want %q", got, "user:8")
	}
}

func TestOptionalAuth(t *testing.T) {
	users := newMockUsers(&domain.User{ID: 7, PasswordHash: "hash-v1"})
	auth := middleware.NewAuth(users, testSecret)
	handler := auth.OptionalAuth(echoPrincipal())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("anonymous: status = %d body = %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, 7, "hash-v1", time.Hour))
	if rec.Code != http.StatusOK || rec.Body.String() != "user:7" {
		t.Fatalf("with session: status = %d body = %q", rec.Code, rec.Body.String())
	}
}
