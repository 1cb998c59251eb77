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

type WorkshopHandler struct {
	Workshops *service.WorkshopService
	Auth      *middleware.Auth
}

func NewWorkshopHandler(workshops *service.WorkshopService, auth *middleware.Auth) *WorkshopHandler {
	return &WorkshopHandler{Workshops: workshops, Auth: auth}
}

func (h *WorkshopHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listByDomain) // GET ?domain_id=...
	r.Get("/{workshopID}", h.get)
	r.Get("/{workshopID}/photo", h.photo)
	r.Get("/{workshopID}/coordinators", h.coordinators)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Post("/", h.create)
		r.Patch("/{workshopID}", h.change)
		r.Delete("/{workshopID}", h.delete)
		r.Post("/{workshopID}/photo", h.setPhoto)
		r.Post("/{workshopID}/coordinators", h.grantCoordinator)

		r.Post("/{workshopID}/join", h.join)
		r.Delete("/{workshopID}/join", h.leave)

		r.Get("/{workshopID}/attendance", h.attendance)
		r.Put("/{workshopID}/attendance/{userID}", h.markAttendance)
	})
	return r
}

func (h *WorkshopHandler) listByDomain(w http.ResponseWriter, r *http.Request) {
	domainID, err := strconv.ParseInt(r.URL.Query().Get("domain_id"), 10, 64)
	if err != nil || domainID <= 0 {
		response.BadRequest(w, "domain_id query parameter is required")
		return
	}
	list, err := h.Workshops.ListByDomain(r.Context(), domainID)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *WorkshopHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	ws, err := h.Workshops.Get(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, ws)
}

func (h *WorkshopHandler) create(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	var in service.WorkshopCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	ws, err := h.Workshops.Create(r.Context(), u, in)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, ws)
}

func (h *WorkshopHandler) change(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	var in service.WorkshopChange
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Workshops.Change(r.Context(), u, id, in); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkshopHandler) delete(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	if err := h.Workshops.Delete(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkshopHandler) photo(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	data, err := h.Workshops.Photo(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	servePhoto(w, data)
}

func (h *WorkshopHandler) setPhoto(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	data, err := readPhoto(w, r)
	if err != nil {
		response.BadRequest(w, "could not read photo upload")
		return
	}
	if err := h.Workshops.SetPhoto(r.Context(), u, id, data); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkshopHandler) coordinators(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	list, err := h.Workshops.Coordinators(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *WorkshopHandler) grantCoordinator(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	var in struct {
		StudentID int64 `json:"student_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.StudentID == 0 {
		response.BadRequest(w, "student_id is required")
		return
	}
	if err := h.Workshops.GrantCoordinator(r.Context(), u, id, in.StudentID); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkshopHandler) join(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	if err := h.Workshops.Join(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkshopHandler) leave(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	if err := h.Workshops.Leave(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkshopHandler) attendance(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "workshopID")
	if !ok {
		response.BadRequest(w, "invalid workshop id")
		return
	}
	list, err := h.Workshops.Attendance(r.Context(), u, id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *WorkshopHandler) markAttendance(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	workshopID, ok1 := idParam(r, "workshopID")
	userID, ok2 := idParam(r, "userID")
	if !ok1 || !ok2 {
		response.BadRequest(w, "invalid workshop or user id")
		return
	}
	var in struct {
		Attended bool `json:"attended"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Workshops.MarkAttendance(r.Context(), u, workshopID, userID, in.Attended); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
