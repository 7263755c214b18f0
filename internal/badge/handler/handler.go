// Package handler exposes badge scanning over HTTP.
package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boothbase/boothbase-backend/internal/badge/domain"
	"github.com/boothbase/boothbase-backend/internal/badge/service"
	"github.com/boothbase/boothbase-backend/pkg/httputil"
	"github.com/boothbase/boothbase-backend/pkg/logger"
)

// Handler handles HTTP requests for badge scans
type Handler struct {
	service   *service.Service
	log       *logger.Logger
	maxUpload int64
}

// NewHandler creates a new badge scan handler
func NewHandler(svc *service.Service, log *logger.Logger, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return &Handler{
		service:   svc,
		log:       log,
		maxUpload: maxUpload,
	}
}

// Scan handles POST /badge-scans
// Accepts a multipart form with:
// - file: the badge photo
// Runs the resolution pipeline synchronously and returns the session in
// its terminal state.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httputil.JSON(w, http.StatusBadRequest, map[string]string{
			"error": "File too large or invalid multipart form",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.JSON(w, http.StatusBadRequest, map[string]string{
			"error": "Missing file in request",
		})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		httputil.JSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to read uploaded file",
		})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	sess, err := h.service.Scan(r.Context(), imageData, mimeType)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, sess)
}

// Get handles GET /badge-scans/{scanID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), chi.URLParam(r, "scanID"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sess)
}

// Select handles POST /badge-scans/{scanID}/select
// Resolves a disambiguating scan to the dealer the user picked.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DealerID string `json:"dealer_id" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	sess, err := h.service.SelectCandidate(r.Context(), chi.URLParam(r, "scanID"), req.DealerID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sess)
}

// CreateNew handles POST /badge-scans/{scanID}/create-new
// Declines all candidates and switches the scan to manual entry.
func (h *Handler) CreateNew(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.CreateNew(r.Context(), chi.URLParam(r, "scanID"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sess)
}

// Submit handles POST /badge-scans/{scanID}/submit
// Creates a dealer from the manual-entry form and finishes the scan.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var form domain.DealerForm
	if err := httputil.DecodeJSON(r, &form); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(form); err != nil {
		httputil.Error(w, err)
		return
	}

	sess, err := h.service.Submit(r.Context(), chi.URLParam(r, "scanID"), form)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, sess)
}
