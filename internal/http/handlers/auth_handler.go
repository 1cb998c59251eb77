package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/techfest-sliet/festd/internal/http/middleware"
	"github.com/techfest-sliet/festd/internal/http/response"
	"github.com/techfest-sliet/festd/internal/service"
	"github.com/techfest-sliet/festd/pkg/config"
)

type AuthHandler struct {
	Auth    *service.AuthService
	Cfg     config.AuthConfig
	Limiter func(http.Handler) http.Handler
}

func NewAuthHandler(auth *service.AuthService, cfg config.AuthConfig, limiter func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{Auth: auth, Cfg: cfg, Limiter: limiter}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/sign-up/student", h.signUpStudent)
	r.Post("/sign-up/faculty", h.signUpFaculty)
	r.Get("/verify", h.verify) // GET ?id=...&token=...
	r.Post("/verify/resend", h.resendVerification)

	// Credential-bearing endpoints carry the rate limiter.
	r.Group(func(r chi.Router) {
		if h.Limiter != nil {
			r.Use(h.Limiter)
		}
		r.Post("/sign-in", h.signIn)
		r.Post("/reset/send", h.sendReset)
		r.Post("/reset", h.resetPassword)
	})
	r.Post("/sign-out", h.signOut)
	return r
}

func (h *AuthHandler) signUpStudent(w http.ResponseWriter, r *http.Request) {
	var in service.StudentSignUp
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	u, err := h.Auth.SignUpStudent(r.Context(), in)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, u.Profile())
}

func (h *AuthHandler) signUpFaculty(w http.ResponseWriter, r *http.Request) {
	var in service.FacultySignUp
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	u, err := h.Auth.SignUpFaculty(r.Context(), in)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, u.Profile())
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		response.BadRequest(w, "email and password are required")
		return
	}
	tok, u, err := h.Auth.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		response.MapError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(h.Cfg.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"token": tok,
		"user":  u.Profile(),
	})
}

func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	tok := r.URL.Query().Get("token")
	if err != nil || tok == "" {
		response.BadRequest(w, "id and token query parameters are required")
		return
	}
	if err := h.Auth.Verify(r.Context(), id, tok); err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

func (h *AuthHandler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		response.BadRequest(w, "email is required")
		return
	}
	if err := h.Auth.ResendVerification(r.Context(), in.Email); err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, map[string]string{"message": "verification email sent"})
}

func (h *AuthHandler) sendReset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		response.BadRequest(w, "email is required")
		return
	}
	if err := h.Auth.SendReset(r.Context(), in.Email); err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, map[string]string{"message": "reset email sent"})
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID       int64  `json:"id"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" {
		response.BadRequest(w, "id, token and password are required")
		return
	}
	if err := h.Auth.ResetPassword(r.Context(), in.ID, in.Token, in.Password); err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
