// Package events publishes dealer lifecycle events to the message bus.
package events

import (
	"context"

	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
	"github.com/boothbase/boothbase-backend/pkg/logger"
	"github.com/boothbase/boothbase-backend/pkg/messaging"
)

// DealerEventPublisher publishes dealer-related events
type DealerEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewDealerEventPublisher creates a new dealer event publisher
func NewDealerEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*DealerEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeDealerEvents, "crm-service", log)
	if err != nil {
		return nil, err
	}

	return &DealerEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishDealerCreated publishes a dealer created event
func (p *DealerEventPublisher) PublishDealerCreated(ctx context.Context, dealer *repository.Dealer, source string) {
	if p == nil {
		return
	}
	data := messaging.DealerCreatedEvent{
		DealerID:    dealer.ID,
		AccountID:   dealer.AccountID,
		CompanyName: dealer.CompanyName,
		ContactName: dealer.ContactName,
		Source:      source,
	}
	if err := p.publisher.Publish(ctx, messaging.EventDealerCreated, data); err != nil {
		p.logger.Error().Err(err).Str("dealer_id", dealer.ID).Msg("failed to publish dealer created event")
	}
}

// PublishDealerUpdated publishes a dealer updated event
func (p *DealerEventPublisher) PublishDealerUpdated(ctx context.Context, dealer *repository.Dealer, fields map[string]any) {
	if p == nil {
		return
	}
	data := messaging.DealerUpdatedEvent{
		DealerID:  dealer.ID,
		AccountID: dealer.AccountID,
		Fields:    fields,
	}
	if err := p.publisher.Publish(ctx, messaging.EventDealerUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("dealer_id", dealer.ID).Msg("failed to publish dealer updated event")
	}
}

// PublishDealerDeleted publishes a dealer deleted event
func (p *DealerEventPublisher) PublishDealerDeleted(ctx context.Context, dealerID, accountID string) {
	if p == nil {
		return
	}
	data := messaging.DealerDeletedEvent{
		DealerID:  dealerID,
		AccountID: accountID,
	}
	if err := p.publisher.Publish(ctx, messaging.EventDealerDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("dealer_id", dealerID).Msg("failed to publish dealer deleted event")
	}
}

// PublishNoteCreated publishes a note created event
func (p *DealerEventPublisher) PublishNoteCreated(ctx context.Context, note *repository.Note) {
	if p == nil {
		return
	}
	data := messaging.DealerNoteCreatedEvent{
		NoteID:   note.ID,
		DealerID: note.DealerID,
		Kind:     note.Kind,
	}
	if err := p.publisher.Publish(ctx, messaging.EventDealerNoteCreated, data); err != nil {
		p.logger.Error().Err(err).Str("note_id", note.ID).Msg("failed to publish note created event")
	}
}

// PublishImageAttached publishes an image attached event
func (p *DealerEventPublisher) PublishImageAttached(ctx context.Context, img *repository.Image) {
	if p == nil {
		return
	}
	data := messaging.DealerImageAttachedEvent{
		ImageID:  img.ID,
		DealerID: img.DealerID,
		Kind:     img.Kind,
	}
	if err := p.publisher.Publish(ctx, messaging.EventDealerImageAttached, data); err != nil {
		p.logger.Error().Err(err).Str("image_id", img.ID).Msg("failed to publish image attached event")
	}
}
