// Package service runs the badge capture resolution pipeline and the
// follow-up transitions driven by the user: conditioning, recognition,
// sanitizing, candidate scoring, and the resolution policy that decides
// between auto-resolve, disambiguation, and manual entry.
package service

import (
	"context"
	"time"

	"github.com/boothbase/boothbase-backend/internal/badge/conditioner"
	"github.com/boothbase/boothbase-backend/internal/badge/domain"
	"github.com/boothbase/boothbase-backend/internal/badge/matcher"
	"github.com/boothbase/boothbase-backend/internal/badge/recognizer"
	"github.com/boothbase/boothbase-backend/internal/badge/storage"
	"github.com/boothbase/boothbase-backend/pkg/account"
	"github.com/boothbase/boothbase-backend/pkg/errors"
	"github.com/boothbase/boothbase-backend/pkg/logger"
	"github.com/boothbase/boothbase-backend/pkg/messaging"
)

// autoResolveThreshold is the strict confidence bar for skipping user
// confirmation. A lone candidate at exactly 0.8 still goes to review.
const autoResolveThreshold = 0.8

// DealerDirectory is the dealer-side surface the pipeline needs: fuzzy
// candidate search, creating a dealer from the manual form, and
// attaching the captured badge image.
type DealerDirectory interface {
	SearchCandidates(ctx context.Context, query string, limit int) ([]domain.DealerCandidate, error)
	CreateFromScan(ctx context.Context, form domain.DealerForm) (dealerID string, err error)
	AttachBadgeImage(ctx context.Context, dealerID string, data []byte, mimeType string) error
}

// EventPublisher publishes scan lifecycle events. Satisfied by
// messaging.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// Service orchestrates badge scans: run pipeline → store session →
// apply user follow-up transitions.
type Service struct {
	recognizer  recognizer.TextRecognizer
	dealers     DealerDirectory
	sessions    *storage.SessionStore
	events      EventPublisher
	log         *logger.Logger
	searchLimit int
}

// NewService creates a badge scan service
func NewService(rec recognizer.TextRecognizer, dealers DealerDirectory, sessions *storage.SessionStore, events EventPublisher, log *logger.Logger, searchLimit int) *Service {
	if searchLimit <= 0 {
		searchLimit = 10
	}
	return &Service{
		recognizer:  rec,
		dealers:     dealers,
		sessions:    sessions,
		events:      events,
		log:         log,
		searchLimit: searchLimit,
	}
}

// Scan runs the full resolution pipeline over one badge capture and
// returns the resulting session in a terminal state. Every failure mode
// inside the pipeline degrades to manual fallback; the caller always
// gets an actionable session back, never an error from the pipeline
// itself.
func (s *Service) Scan(ctx context.Context, imageData []byte, mimeType string) (*domain.Session, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, errors.Unauthorized("no account in context")
	}

	sess := &domain.Session{
		ScanID:    storage.GenerateScanID(),
		AccountID: accountID,
		State:     domain.StateScanning,
		Capture:   domain.Capture{Data: imageData, MimeType: mimeType},
		CreatedAt: time.Now(),
	}
	log := s.log.WithScanID(sess.ScanID).WithAccountID(accountID)

	conditioned := conditioner.Binarize(imageData)

	text, err := s.recognizer.Recognize(ctx, conditioned)
	if err != nil {
		// Recognition failure reads as an empty badge, not a hard error
		log.Warn().Err(err).Msg("text recognition failed, treating as empty")
		text = ""
	}

	sess.Lines = matcher.SanitizeLines(text)
	if len(sess.Lines) == 0 {
		return s.fallback(ctx, sess, domain.FallbackNoText), nil
	}

	words, query := matcher.SearchTerms(sess.Lines)
	if query == "" {
		return s.fallback(ctx, sess, domain.FallbackNoTerms), nil
	}

	candidates, err := s.dealers.SearchCandidates(ctx, query, s.searchLimit)
	if err != nil {
		log.Warn().Err(err).Msg("candidate search failed")
		return s.fallback(ctx, sess, domain.FallbackPipelineError), nil
	}
	if len(candidates) == 0 {
		return s.fallback(ctx, sess, domain.FallbackNoCandidates), nil
	}

	scored := matcher.Score(words, candidates)
	confidence := matcher.Confidence(scored[0].MatchScore)

	if len(scored) == 1 && confidence > autoResolveThreshold {
		return s.autoResolve(ctx, sess, scored[0], confidence), nil
	}

	sess.State = domain.StateDisambiguating
	sess.Candidates = scored
	sess.Confidence = confidence
	s.sessions.Store(sess)

	s.publish(ctx, messaging.EventScanDisambiguated, messaging.ScanDisambiguatedEvent{
		ScanID:     sess.ScanID,
		AccountID:  sess.AccountID,
		Candidates: len(scored),
	})
	log.Info().
		Int("candidates", len(scored)).
		Float64("confidence", confidence).
		Msg("badge scan needs disambiguation")
	return sess, nil
}

// Get returns a scan session. Sessions are scoped to the caller's
// account; a foreign or expired session reads as not found.
func (s *Service) Get(ctx context.Context, scanID string) (*domain.Session, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, errors.Unauthorized("no account in context")
	}
	sess := s.sessions.Get(scanID)
	if sess == nil || sess.AccountID != accountID {
		return nil, errors.NotFound("scan")
	}
	return sess, nil
}

// SelectCandidate resolves a disambiguating session to the candidate the
// user picked, attaching the captured image to that dealer.
func (s *Service) SelectCandidate(ctx context.Context, scanID, dealerID string) (*domain.Session, error) {
	sess, err := s.Get(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.StateDisambiguating {
		return nil, errors.Conflict("scan is not awaiting a selection")
	}
	var picked *domain.ScoredCandidate
	for i := range sess.Candidates {
		if sess.Candidates[i].ID == dealerID {
			picked = &sess.Candidates[i]
			break
		}
	}
	if picked == nil {
		return nil, errors.BadRequest("dealer is not among the scan's candidates")
	}

	s.attachCapture(ctx, sess, dealerID)
	confidence := matcher.Confidence(picked.MatchScore)
	s.sessions.Update(scanID, func(sx *domain.Session) {
		sx.State = domain.StateAutoResolved
		sx.DealerID = dealerID
		sx.Confidence = confidence
	})

	s.publish(ctx, messaging.EventScanResolved, messaging.ScanResolvedEvent{
		ScanID:     sess.ScanID,
		DealerID:   dealerID,
		AccountID:  sess.AccountID,
		Confidence: confidence,
		Auto:       false,
	})
	return s.sessions.Get(scanID), nil
}

// CreateNew moves a disambiguating session to manual fallback because
// none of the candidates matched. Candidates are cleared; the captured
// image stays for attach-on-save.
func (s *Service) CreateNew(ctx context.Context, scanID string) (*domain.Session, error) {
	sess, err := s.Get(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.StateDisambiguating {
		return nil, errors.Conflict("scan is not awaiting a selection")
	}

	prefill := matcher.Classify(sess.Lines)
	s.sessions.Update(scanID, func(sx *domain.Session) {
		sx.State = domain.StateManualFallback
		sx.Candidates = nil
		sx.Confidence = 0
		sx.Prefill = &prefill
		sx.Reason = domain.FallbackUserCreateNew
	})

	s.publish(ctx, messaging.EventScanFallback, messaging.ScanFallbackEvent{
		ScanID:    sess.ScanID,
		AccountID: sess.AccountID,
		Reason:    string(domain.FallbackUserCreateNew),
	})
	return s.sessions.Get(scanID), nil
}

// Submit completes a manual-fallback session: create the dealer from the
// form, then attach the captured image if one exists.
func (s *Service) Submit(ctx context.Context, scanID string, form domain.DealerForm) (*domain.Session, error) {
	sess, err := s.Get(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.StateManualFallback {
		return nil, errors.Conflict("scan is not in manual entry")
	}

	dealerID, err := s.dealers.CreateFromScan(ctx, form)
	if err != nil {
		return nil, err
	}
	s.attachCapture(ctx, sess, dealerID)

	s.sessions.Update(scanID, func(sx *domain.Session) {
		sx.State = domain.StateAutoResolved
		sx.DealerID = dealerID
	})

	s.publish(ctx, messaging.EventScanResolved, messaging.ScanResolvedEvent{
		ScanID:    sess.ScanID,
		DealerID:  dealerID,
		AccountID: sess.AccountID,
		Auto:      false,
	})
	return s.sessions.Get(scanID), nil
}

// fallback finishes a session in manual fallback, pre-filling the form
// from whatever sanitized lines survived.
func (s *Service) fallback(ctx context.Context, sess *domain.Session, reason domain.FallbackReason) *domain.Session {
	prefill := matcher.Classify(sess.Lines)
	sess.State = domain.StateManualFallback
	sess.Prefill = &prefill
	sess.Reason = reason
	s.sessions.Store(sess)

	s.publish(ctx, messaging.EventScanFallback, messaging.ScanFallbackEvent{
		ScanID:    sess.ScanID,
		AccountID: sess.AccountID,
		Reason:    string(reason),
	})
	s.log.WithScanID(sess.ScanID).Info().
		Str("reason", string(reason)).
		Msg("badge scan fell back to manual entry")
	return sess
}

// autoResolve finishes a session on the single strong candidate without
// user confirmation.
func (s *Service) autoResolve(ctx context.Context, sess *domain.Session, winner domain.ScoredCandidate, confidence float64) *domain.Session {
	s.attachCapture(ctx, sess, winner.ID)
	sess.State = domain.StateAutoResolved
	sess.DealerID = winner.ID
	sess.Candidates = []domain.ScoredCandidate{winner}
	sess.Confidence = confidence
	s.sessions.Store(sess)

	s.publish(ctx, messaging.EventScanResolved, messaging.ScanResolvedEvent{
		ScanID:     sess.ScanID,
		DealerID:   winner.ID,
		AccountID:  sess.AccountID,
		Confidence: confidence,
		Auto:       true,
	})
	s.log.WithScanID(sess.ScanID).WithDealerID(winner.ID).Info().
		Float64("confidence", confidence).
		Msg("badge scan auto-resolved")
	return sess
}

// attachCapture attaches the session's image to a dealer. Attach failure
// never blocks resolution; the scan outcome stands and the miss is
// logged.
func (s *Service) attachCapture(ctx context.Context, sess *domain.Session, dealerID string) {
	if len(sess.Capture.Data) == 0 {
		return
	}
	if err := s.dealers.AttachBadgeImage(ctx, dealerID, sess.Capture.Data, sess.Capture.MimeType); err != nil {
		s.log.WithScanID(sess.ScanID).WithDealerID(dealerID).
			Warn().Err(err).Msg("failed to attach badge image")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, data); err != nil {
		s.log.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish scan event")
	}
}
