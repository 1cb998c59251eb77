package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/techfest-sliet/festd/internal/http/middleware"
	"github.com/techfest-sliet/festd/internal/http/response"
	"github.com/techfest-sliet/festd/internal/service"
)

type EventHandler struct {
	Events *service.EventService
	Auth   *middleware.Auth
}

func NewEventHandler(events *service.EventService, auth *middleware.Auth) *EventHandler {
	return &EventHandler{Events: events, Auth: auth}
}

func (h *EventHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listByDomain) // GET ?domain_id=...
	r.Get("/{eventID}", h.get)
	r.Get("/{eventID}/photo", h.photo)
	r.Get("/{eventID}/coordinators", h.coordinators)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Post("/", h.create)
		r.Patch("/{eventID}", h.change)
		r.Delete("/{eventID}", h.delete)
		r.Post("/{eventID}/photo", h.setPhoto)
		r.Post("/{eventID}/coordinators", h.grantCoordinator)

		r.Post("/{eventID}/join", h.joinIndividual)
		r.Delete("/{eventID}/join", h.leaveIndividual)
		r.Post("/{eventID}/join/team/{teamID}", h.joinTeam)
		r.Delete("/{eventID}/join/team/{teamID}", h.leaveTeam)

		r.Get("/{eventID}/attendance", h.individualAttendance)
		r.Put("/{eventID}/attendance/{userID}", h.markIndividual)
		r.Get("/{eventID}/attendance/teams", h.teamAttendance)
		r.Put("/{eventID}/attendance/teams/{teamID}", h.markTeam)
	})
	return r
}

func (h *EventHandler) listByDomain(w http.ResponseWriter, r *http.Request) {
	domainID, err := strconv.ParseInt(r.URL.Query().Get("domain_id"), 10, 64)
	if err != nil || domainID <= 0 {
		response.BadRequest(w, "domain_id query parameter is required")
		return
	}
	list, err := h.Events.ListByDomain(r.Context(), domainID)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *EventHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	e, err := h.Events.Get(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, e)
}

func (h *EventHandler) create(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	var in service.EventCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	e, err := h.Events.Create(r.Context(), u, in)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, e)
}

func (h *EventHandler) change(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	var in service.EventChange
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Events.Change(r.Context(), u, id, in); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) delete(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	if err := h.Events.Delete(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) photo(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	data, err := h.Events.Photo(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	servePhoto(w, data)
}

func (h *EventHandler) setPhoto(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	data, err := readPhoto(w, r)
	if err != nil {
		response.BadRequest(w, "could not read photo upload")
		return
	}
	if err := h.Events.SetPhoto(r.Context(), u, id, data); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) coordinators(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	list, err := h.Events.Coordinators(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *EventHandler) grantCoordinator(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	var in struct {
		StudentID int64 `json:"student_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.StudentID == 0 {
		response.BadRequest(w, "student_id is required")
		return
	}
	if err := h.Events.GrantCoordinator(r.Context(), u, id, in.StudentID); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) joinIndividual(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	if err := h.Events.JoinIndividual(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) leaveIndividual(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	if err := h.Events.LeaveIndividual(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) joinTeam(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	eventID, ok1 := idParam(r, "eventID")
	teamID, ok2 := idParam(r, "teamID")
	if !ok1 || !ok2 {
		response.BadRequest(w, "invalid event or team id")
		return
	}
	if err := h.Events.JoinTeam(r.Context(), u, eventID, teamID); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) leaveTeam(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	eventID, ok1 := idParam(r, "eventID")
	teamID, ok2 := idParam(r, "teamID")
	if !ok1 || !ok2 {
		response.BadRequest(w, "invalid event or team id")
		return
	}
	if err := h.Events.LeaveTeam(r.Context(), u, eventID, teamID); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) individualAttendance(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	list, err := h.Events.IndividualAttendance(r.Context(), u, id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *EventHandler) markIndividual(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	eventID, ok1 := idParam(r, "eventID")
	userID, ok2 := idParam(r, "userID")
	if !ok1 || !ok2 {
		response.BadRequest(w, "invalid event or user id")
		return
	}
	var in struct {
		Attended bool `json:"attended"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Events.MarkIndividualAttendance(r.Context(), u, eventID, userID, in.Attended); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) teamAttendance(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "eventID")
	if !ok {
		response.BadRequest(w, "invalid event id")
		return
	}
	list, err := h.Events.TeamAttendance(r.Context(), u, id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *EventHandler) markTeam(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	eventID, ok1 := idParam(r, "eventID")
	teamID, ok2 := idParam(r, "teamID")
	if !ok1 || !ok2 {
		response.BadRequest(w, "invalid event or team id")
		return
	}
	var in struct {
		Attended bool `json:"attended"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Events.MarkTeamAttendance(r.Context(), u, eventID, teamID, in.Attended); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
