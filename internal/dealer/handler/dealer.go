// Package handler exposes the dealer roster over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
	"github.com/boothbase/boothbase-backend/internal/dealer/service"
	"github.com/boothbase/boothbase-backend/pkg/httputil"
	"github.com/boothbase/boothbase-backend/pkg/logger"
)

// DealerHandler handles dealer roster endpoints
type DealerHandler struct {
	service *service.DealerService
	logger  *logger.Logger
}

// NewDealerHandler creates a new dealer handler
func NewDealerHandler(svc *service.DealerService, log *logger.Logger) *DealerHandler {
	return &DealerHandler{
		service: svc,
		logger:  log,
	}
}

// dealerRequest is the create/update payload
type dealerRequest struct {
	CompanyName string  `json:"company_name" validate:"required,min=1,max=200"`
	ContactName string  `json:"contact_name" validate:"required,min=1,max=200"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	State       *string `json:"state" validate:"omitempty,max=100"`
}

// List lists the account's dealers
func (h *DealerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	dealers, total, err := h.service.ListDealers(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, dealers, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Search handles GET /dealers/search?q=&limit=
func (h *DealerHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.service.Search(r.Context(), query, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, results)
}

// Get gets a dealer by ID
func (h *DealerHandler) Get(w http.ResponseWriter, r *http.Request) {
	dealer, err := h.service.GetDealer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, dealer)
}

// Create creates a new dealer
func (h *DealerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dealerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	dealer := repository.Dealer{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		City:        req.City,
		State:       req.State,
	}
	if userID := httputil.GetUserID(r.Context()); userID != "" {
		dealer.CreatedBy = &userID
	}

	if err := h.service.CreateDealer(r.Context(), &dealer); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, dealer)
}

// Update updates a dealer
func (h *DealerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dealerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	dealer := repository.Dealer{
		ID:          chi.URLParam(r, "id"),
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		City:        req.City,
		State:       req.State,
	}
	if err := h.service.UpdateDealer(r.Context(), &dealer); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, dealer)
}

// Delete soft-deletes a dealer
func (h *DealerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDealer(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
