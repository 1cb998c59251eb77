package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/http/response"
)

// maxPhotoBytes caps photo uploads at 8 MiB.
const maxPhotoBytes = 8 << 20

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func readPhoto(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxPhotoBytes))
}

func servePhoto(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}

// Departments serves the department codes sign-up forms choose from.
func Departments(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, domain.Departments())
}
