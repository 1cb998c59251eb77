package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/http/response"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
	"github.com/techfest-sliet/festd/internal/token"
)

type contextKey string

const principalKey contextKey = "principal"

// SessionCookie is the cookie the sign-in handler sets and the
// resolver reads.
const SessionCookie = "session"

// Principal returns the authenticated user stored by RequireAuth or
// OptionalAuth, or nil.
func Principal(ctx context.Context) *domain.User {
	u, _ := ctx.Value(principalKey).(*domain.User)
	return u
}

// Auth resolves session tokens into principals. Every protected
// request costs one user load; the stored password hash must still
// match the snapshot inside the token or the session is dead.
type Auth struct {
	users  postgres.UsersRepo
	secret []byte
}

func NewAuth(users postgres.UsersRepo, secret []byte) *Auth {
	return &Auth{users: users, secret: secret}
}

func (a *Auth) resolve(r *http.Request) (*domain.User, error) {
	raw := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		raw = c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimPrefix(h, "Bearer ")
	}
	if raw == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := token.ParseSession(a.secret, raw)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	u, err := a.users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	if u.PasswordHash != claims.PasswordHash {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

// RequireAuth rejects requests without a valid session.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.resolve(r)
		if err != nil {
			response.Unauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, u)))
	})
}

// OptionalAuth attaches a principal when one is present but lets
// anonymous requests through.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := a.resolve(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), principalKey, u))
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the real client address, honoring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
