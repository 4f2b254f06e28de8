package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rdzcn/weight-tracker/internal/application/weight"
	"github.com/rdzcn/weight-tracker/internal/transport/http/middleware"
)

// WeightHandler handles weight entry endpoints.
type WeightHandler struct {
	svc weight.Service
}

func NewWeightHandler(svc weight.Service) *WeightHandler { return &WeightHandler{svc: svc} }

// Submit accepts a multipart form with either a "weight" field or an
// "image" file (a scale photo to run through OCR), never both.
func (h *WeightHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var in weight.SubmitInput
	if raw := r.FormValue("weight"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid weight value")
			return
		}
		in.Weight = &v
	}
	if f, _, err := r.FormFile("image"); err == nil {
		defer f.Close()
		img, err := io.ReadAll(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read image")
			return
		}
		in.Image = img
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "invalid image field")
		return
	}

	entry, err := h.svc.Submit(r.Context(), identity, in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// List returns the caller's entries ascending by timestamp, optionally
// bounded by inclusive "start"/"end" ISO-8601 query parameters.
func (h *WeightHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entries, err := h.svc.List(r.Context(), identity,
		r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *WeightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entryID := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), identity, entryID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteEnvelope{ID: entryID, Message: "weight entry deleted"})
}

// Image streams the archived scale photo behind an OCR entry.
func (h *WeightHandler) Image(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rc, err := h.svc.Image(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, rc)
}
