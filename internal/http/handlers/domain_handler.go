package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techfest-sliet/festd/internal/http/middleware"
	"github.com/techfest-sliet/festd/internal/http/response"
	"github.com/techfest-sliet/festd/internal/service"
)

type DomainHandler struct {
	Domains *service.DomainService
	Auth    *middleware.Auth
}

func NewDomainHandler(domains *service.DomainService, auth *middleware.Auth) *DomainHandler {
	return &DomainHandler{Domains: domains, Auth: auth}
}

func (h *DomainHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{domainID}", h.get)
	r.Get("/{domainID}/photo", h.photo)
	r.Get("/{domainID}/coordinators/faculty", h.facultyCoordinators)
	r.Get("/{domainID}/coordinators/students", h.studentCoordinators)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Post("/", h.create)
		r.Patch("/{domainID}", h.change)
		r.Delete("/{domainID}", h.delete)
		r.Post("/{domainID}/photo", h.setPhoto)
		r.Post("/{domainID}/coordinators/faculty", h.grantFaculty)
		r.Post("/{domainID}/coordinators/students", h.grantStudent)
	})
	return r
}

func (h *DomainHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.Domains.List(r.Context())
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *DomainHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	d, err := h.Domains.Get(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, d)
}

func (h *DomainHandler) create(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	var in service.DomainCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	d, err := h.Domains.Create(r.Context(), u, in)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, d)
}

func (h *DomainHandler) change(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	var in service.DomainChange
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Domains.Change(r.Context(), u, id, in); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DomainHandler) delete(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	if err := h.Domains.Delete(r.Context(), u, id); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DomainHandler) photo(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	data, err := h.Domains.Photo(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	servePhoto(w, data)
}

func (h *DomainHandler) setPhoto(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	data, err := readPhoto(w, r)
	if err != nil {
		response.BadRequest(w, "could not read photo upload")
		return
	}
	if err := h.Domains.SetPhoto(r.Context(), u, id, data); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DomainHandler) facultyCoordinators(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	list, err := h.Domains.FacultyCoordinators(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *DomainHandler) studentCoordinators(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	list, err := h.Domains.StudentCoordinators(r.Context(), id)
	if err != nil {
		response.MapError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *DomainHandler) grantFaculty(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	var in struct {
		FacultyID int64 `json:"faculty_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.FacultyID == 0 {
		response.BadRequest(w, "faculty_id is required")
		return
	}
	if err := h.Domains.GrantFacultyCoordinator(r.Context(), u, id, in.FacultyID); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DomainHandler) grantStudent(w http.ResponseWriter, r *http.Request) {
	u := middleware.Principal(r.Context())
	id, ok := idParam(r, "domainID")
	if !ok {
		response.BadRequest(w, "invalid domain id")
		return
	}
	var in struct {
		StudentID int64 `json:"student_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.StudentID == 0 {
		response.BadRequest(w, "student_id is required")
		return
	}
	if err := h.Domains.GrantStudentCoordinator(r.Context(), u, id, in.StudentID); err != nil {
		response.MapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
