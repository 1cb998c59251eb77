package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techfest-sliet/festd/internal/http/middleware"
	"github.com/techfest-sliet/festd/internal/http/response"
	"github.com/techfest-sliet/festd/internal/service"
)

type TeamHandler struct {
	Teams  *service.TeamService
	Events *service.EventService
	Auth   *middleware.Auth
}

func NewTeamHandler(teams *service.TeamService, events *service.EventService, auth *middleware.Auth) *TeamHandler {
	return &TeamHandler{Teams: teams, Events: events, Auth: auth}
}

func (h *TeamHandler) Routes() chi.Router {
	r := chi.NewRouter()
	// A team by id is readable without a session.
	r.With(h.Auth.OptionalAuth).Get("/{teamID}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Get("/", h.mine)
		r.Post("/", h.create)
		r.Patch("/{teamID}", h.rename)
		r.Delete("/{teamID}", h.delete)
		r.Get("/{teamID}/members", h.members)
		r.Delete("/{teamID}/members/{studentID}", h.removeMember)
		r.Get("/{teamID}/requests", h.invites)
		r.Post("/{teamID}/requests", h.invite)
		r.Post("/{teamID}/requests/accept", h.accept)
		r.Post("/{teamID}/requests/reject", h.reject)
		r.Get("/{teamID}/events", h.joinedEvents)
	})
	return r
}

func (h *TeamHandler) mine(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	list, err := h.Teams.Mine(r.Context(), u)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *TeamHandler) create(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	var in service.TeamCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	t, err := h.Teams.Create(r.Context(), u, in)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, t)
}

func (h *TeamHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	t, err := h.Teams.Get(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, t)
}

func (h *TeamHandler) rename(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Teams.Rename(r.Context(), u, id, in.Name); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) delete(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	if err := h.Teams.Delete(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) members(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	list, err := h.Teams.Members(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *TeamHandler) removeMember(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	teamID, ok1 := idParam(r, "teamID")
	studentID, ok2 := idParam(r, "studentID")
	if !ok1 || !ok2 {
		response.BadRequest(w, "invalid team or student id")
		return
	}
	if err := h.Teams.RemoveMember(r.Context(), u, teamID, studentID); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) invites(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	list, err := h.Teams.Invites(r.Context(), u, id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *TeamHandler) invite(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		response.BadRequest(w, "email is required")
		return
	}
	if err := h.Teams.Invite(r.Context(), u, id, in.Email); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) accept(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	if err := h.Teams.Accept(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) reject(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	if err := h.Teams.Reject(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) joinedEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "teamID")
	if !ok {
		response.BadRequest(w, "invalid team id")
		return
	}
	list, err := h.Events.JoinedByTeam(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}
