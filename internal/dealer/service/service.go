// Package service holds the dealer roster business logic: CRUD with
// account scoping, notes and to-dos, image attachments, and the fuzzy
// candidate search the badge pipeline draws from.
package service

import (
	"context"

	badgedomain "github.com/boothbase/boothbase-backend/internal/badge/domain"
	"github.com/boothbase/boothbase-backend/internal/dealer/events"
	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
	"github.com/boothbase/boothbase-backend/pkg/errors"
	"github.com/boothbase/boothbase-backend/pkg/httputil"
	"github.com/boothbase/boothbase-backend/pkg/logger"
)

// Dealer creation sources, carried on dealer.created events
const (
	SourceManual    = "manual"
	SourceBadgeScan = "badge_scan"
)

// DealerService coordinates dealer roster operations
type DealerService struct {
	dealers *repository.DealerRepository
	notes   *repository.NoteRepository
	images  *repository.ImageRepository
	events  *events.DealerEventPublisher
	log     *logger.Logger
}

// NewDealerService creates a new dealer service
func NewDealerService(dealers *repository.DealerRepository, notes *repository.NoteRepository, images *repository.ImageRepository, pub *events.DealerEventPublisher, log *logger.Logger) *DealerService {
	return &DealerService{
		dealers: dealers,
		notes:   notes,
		images:  images,
		events:  pub,
		log:     log,
	}
}

// CreateDealer creates a dealer from the roster UI
func (s *DealerService) CreateDealer(ctx context.Context, dealer *repository.Dealer) error {
	if err := s.dealers.Create(ctx, dealer); err != nil {
		return err
	}
	s.events.PublishDealerCreated(ctx, dealer, SourceManual)
	return nil
}

// GetDealer gets a dealer by ID
func (s *DealerService) GetDealer(ctx context.Context, id string) (*repository.Dealer, error) {
	return s.dealers.GetByID(ctx, id)
}

// ListDealers returns a page of dealers
func (s *DealerService) ListDealers(ctx context.Context, page, perPage int) ([]repository.Dealer, int64, error) {
	return s.dealers.List(ctx, page, perPage)
}

// UpdateDealer updates a dealer's editable fields
func (s *DealerService) UpdateDealer(ctx context.Context, dealer *repository.Dealer) error {
	if err := s.dealers.Update(ctx, dealer); err != nil {
		return err
	}
	s.events.PublishDealerUpdated(ctx, dealer, map[string]any{
		"company_name": dealer.CompanyName,
		"contact_name": dealer.ContactName,
	})
	return nil
}

// DeleteDealer soft-deletes a dealer
func (s *DealerService) DeleteDealer(ctx context.Context, id string) error {
	dealer, err := s.dealers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.dealers.Delete(ctx, id); err != nil {
		return err
	}
	s.events.PublishDealerDeleted(ctx, dealer.ID, dealer.AccountID)
	return nil
}

// Search runs the trigram similarity search over the roster
func (s *DealerService) Search(ctx context.Context, query string, limit int) ([]repository.SearchResult, error) {
	if query == "" {
		return nil, errors.BadRequest("search query is required")
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.dealers.Search(ctx, query, limit)
}

// AddNote attaches a note or to-do to a dealer
func (s *DealerService) AddNote(ctx context.Context, note *repository.Note) error {
	if note.Kind != repository.NoteKindNote && note.Kind != repository.NoteKindTodo {
		return errors.BadRequest("kind must be note or todo")
	}
	// Reject notes on foreign or deleted dealers before hitting the FK
	if _, err := s.dealers.GetByID(ctx, note.DealerID); err != nil {
		return err
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return err
	}
	s.events.PublishNoteCreated(ctx, note)
	return nil
}

// ListNotes returns a dealer's notes and to-dos
func (s *DealerService) ListNotes(ctx context.Context, dealerID string) ([]repository.Note, error) {
	if _, err := s.dealers.GetByID(ctx, dealerID); err != nil {
		return nil, err
	}
	return s.notes.ListByDealer(ctx, dealerID)
}

// DeleteNote removes a note or to-do
func (s *DealerService) DeleteNote(ctx context.Context, noteID string) error {
	return s.notes.Delete(ctx, noteID)
}

// SetTodoDone marks a to-do as done or reopens it
func (s *DealerService) SetTodoDone(ctx context.Context, noteID string, done bool) (*repository.Note, error) {
	return s.notes.SetDone(ctx, noteID, done)
}

// AttachImage stores an image on a dealer record
func (s *DealerService) AttachImage(ctx context.Context, img *repository.Image) error {
	if _, err := s.dealers.GetByID(ctx, img.DealerID); err != nil {
		return err
	}
	if err := s.images.Create(ctx, img); err != nil {
		return err
	}
	s.events.PublishImageAttached(ctx, img)
	return nil
}

// ListImages returns image metadata for a dealer
func (s *DealerService) ListImages(ctx context.Context, dealerID string) ([]repository.Image, error) {
	if _, err := s.dealers.GetByID(ctx, dealerID); err != nil {
		return nil, err
	}
	return s.images.ListByDealer(ctx, dealerID)
}

// GetImage fetches a single image with its data
func (s *DealerService) GetImage(ctx context.Context, id string) (*repository.Image, error) {
	return s.images.GetByID(ctx, id)
}

// SearchCandidates adapts the trigram search into the candidate bag the
// badge pipeline scores. The similarity score rides along as the
// provisional score; the pipeline re-ranks regardless.
func (s *DealerService) SearchCandidates(ctx context.Context, query string, limit int) ([]badgedomain.DealerCandidate, error) {
	results, err := s.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	candidates := make([]badgedomain.DealerCandidate, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, badgedomain.DealerCandidate{
			ID:          res.ID,
			CompanyName: res.CompanyName,
			ContactName: res.ContactName,
			Email:       deref(res.Email),
			Phone:       deref(res.Phone),
			City:        deref(res.City),
			State:       deref(res.State),
			Score:       res.Similarity,
		})
	}
	return candidates, nil
}

// CreateFromScan creates a dealer from a badge scan's manual-entry form
func (s *DealerService) CreateFromScan(ctx context.Context, form badgedomain.DealerForm) (string, error) {
	dealer := &repository.Dealer{
		CompanyName: form.CompanyName,
		ContactName: form.ContactName,
		Email:       optional(form.Email),
		Phone:       optional(form.Phone),
		City:        optional(form.City),
		State:       optional(form.State),
	}
	if userID := httputil.GetUserID(ctx); userID != "" {
		dealer.CreatedBy = &userID
	}
	if err := s.dealers.Create(ctx, dealer); err != nil {
		return "", err
	}
	s.events.PublishDealerCreated(ctx, dealer, SourceBadgeScan)
	return dealer.ID, nil
}

// AttachBadgeImage stores a captured badge photo on a dealer record
func (s *DealerService) AttachBadgeImage(ctx context.Context, dealerID string, data []byte, mimeType string) error {
	return s.AttachImage(ctx, &repository.Image{
		DealerID: dealerID,
		Kind:     repository.ImageKindBadge,
		MimeType: mimeType,
		Data:     data,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
