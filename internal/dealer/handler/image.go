package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
	"github.com/boothbase/boothbase-backend/internal/dealer/service"
	"github.com/boothbase/boothbase-backend/pkg/httputil"
	"github.com/boothbase/boothbase-backend/pkg/logger"
)

// ImageHandler handles dealer image endpoints
type ImageHandler struct {
	service   *service.DealerService
	logger    *logger.Logger
	maxUpload int64
}

// NewImageHandler creates a new image handler
func NewImageHandler(svc *service.DealerService, log *logger.Logger, maxUpload int64) *ImageHandler {
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return &ImageHandler{
		service:   svc,
		logger:    log,
		maxUpload: maxUpload,
	}
}

// Upload handles POST /dealers/{id}/images
// Accepts a multipart form with:
// - file: the image
// - kind: badge, logo, or photo (defaults to photo)
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httputil.JSON(w, http.StatusBadRequest, map[string]string{
			"error": "File too large or invalid multipart form",
		})
		return
	}

	kind := r.FormValue("kind")
	if kind == "" {
		kind = repository.ImageKindPhoto
	}
	switch kind {
	case repository.ImageKindBadge, repository.ImageKindLogo, repository.ImageKindPhoto:
	default:
		httputil.JSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid kind. Must be one of: badge, logo, photo",
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

	data, err := io.ReadAll(file)
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

	img := repository.Image{
		DealerID: chi.URLParam(r, "id"),
		Kind:     kind,
		MimeType: mimeType,
		Data:     data,
	}
	if err := h.service.AttachImage(r.Context(), &img); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, img)
}

// List handles GET /dealers/{id}/images
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListImages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, images)
}

// Download handles GET /images/{imageID}
// Streams the raw image bytes with the stored content type.
func (h *ImageHandler) Download(w http.ResponseWriter, r *http.Request) {
	img, err := h.service.GetImage(r.Context(), chi.URLParam(r, "imageID"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		h.logger.Warn().Err(err).Str("image_id", img.ID).Msg("failed to write image response")
	}
}
