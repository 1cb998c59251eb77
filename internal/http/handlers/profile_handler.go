package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techfest-sliet/festd/internal/http/middleware"
	"github.com/techfest-sliet/festd/internal/http/response"
	"github.com/techfest-sliet/festd/internal/service"
)

// ProfileHandler serves the authenticated user's own account:
// profile, photo, joined activities, pending team invitations.
type ProfileHandler struct {
	Profiles  *service.ProfileService
	Events    *service.EventService
	Workshops *service.WorkshopService
	Payments  *service.PaymentService
}

func NewProfileHandler(profiles *service.ProfileService, events *service.EventService, workshops *service.WorkshopService, payments *service.PaymentService) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Events: events, Workshops: workshops, Payments: payments}
}

func (h *ProfileHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.get)
	r.Patch("/", h.change)
	r.Get("/student", h.student)
	r.Get("/faculty", h.faculty)
	r.Get("/photo", h.photo)
	r.Post("/photo", h.setPhoto)
	r.Get("/events", h.joinedEvents)
	r.Get("/workshops", h.joinedWorkshops)
	r.Get("/team-requests", h.pendingInvites)
	r.Post("/payment", h.recordPayment)
	return r
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	response.WriteJSON(w, http.StatusOK, u.Profile())
}

func (h *ProfileHandler) change(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	var in service.ProfileChange
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Profiles.Change(r.Context(), u.ID, in); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) student(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	s, err := h.Profiles.Student(r.Context(), u.ID)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, s)
}

func (h *ProfileHandler) faculty(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	f, err := h.Profiles.Faculty(r.Context(), u.ID)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, f)
}

func (h *ProfileHandler) photo(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	data, err := h.Profiles.Photo(r.Context(), u.ID)
	if err != nil {
		response.MapError(w, err)
		return
	}
	servePhoto(w, data)
}

func (h *ProfileHandler) setPhoto(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	data, err := readPhoto(w, r)
	if err != nil {
		response.BadRequest(w, "could not read photo upload")
		return
	}
	if err := h.Profiles.SetPhoto(r.Context(), u.ID, data); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) joinedEvents(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	list, err := h.Events.JoinedIndividual(r.Context(), u)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *ProfileHandler) joinedWorkshops(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	list, err := h.Workshops.Joined(r.Context(), u)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *ProfileHandler) pendingInvites(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	list, err := h.Profiles.PendingInvites(r.Context(), u.ID)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *ProfileHandler) recordPayment(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	var in struct {
		PaymentID string `json:"payment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.PaymentID == "" {
		response.BadRequest(w, "payment_id is required")
		return
	}
	p, err := h.Payments.Record(r.Context(), u.ID, in.PaymentID)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, p)
}
