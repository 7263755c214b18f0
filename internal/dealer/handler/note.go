package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
	"github.com/boothbase/boothbase-backend/internal/dealer/service"
	"github.com/boothbase/boothbase-backend/pkg/actor"
	"github.com/boothbase/boothbase-backend/pkg/httputil"
	"github.com/boothbase/boothbase-backend/pkg/logger"
)

// NoteHandler handles dealer note and to-do endpoints
type NoteHandler struct {
	service *service.DealerService
	logger  *logger.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(svc *service.DealerService, log *logger.Logger) *NoteHandler {
	return &NoteHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /dealers/{id}/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind" validate:"omitempty,oneof=note todo"`
		Body string `json:"body" validate:"required,min=1,max=10000"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}
	if req.Kind == "" {
		req.Kind = repository.NoteKindNote
	}

	note := repository.Note{
		DealerID: chi.URLParam(r, "id"),
		Kind:     req.Kind,
		Body:     req.Body,
	}
	if a := actor.FromContext(r.Context()); a != nil {
		note.CreatedBy = &a.ID
	}

	if err := h.service.AddNote(r.Context(), &note); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, note)
}

// List handles GET /dealers/{id}/notes
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListNotes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, notes)
}

// Delete handles DELETE /notes/{noteID}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteNote(r.Context(), chi.URLParam(r, "noteID")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// SetDone handles PUT /notes/{noteID}/done
func (h *NoteHandler) SetDone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Done bool `json:"done"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	note, err := h.service.SetTodoDone(r.Context(), chi.URLParam(r, "noteID"), req.Done)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, note)
}
