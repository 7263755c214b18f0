// Package consumers keeps the local user cache in sync with the identity
// service by listening to its user events.
package consumers

import (
	"context"
	"fmt"

	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
	"github.com/boothbase/boothbase-backend/pkg/account"
	"github.com/boothbase/boothbase-backend/pkg/logger"
	"github.com/boothbase/boothbase-backend/pkg/messaging"
)

// UserEventConsumer consumes user events into the local user cache
type UserEventConsumer struct {
	consumer      *messaging.Consumer
	userCacheRepo *repository.UserCacheRepository
	logger        *logger.Logger
}

// NewUserEventConsumer creates a new user event consumer
func NewUserEventConsumer(rmq *messaging.RabbitMQ, userCacheRepo *repository.UserCacheRepository, log *logger.Logger) (*UserEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "crm-service.user-events", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeUserEvents, "user.#"); err != nil {
		return nil, err
	}

	c := &UserEventConsumer{
		consumer:      consumer,
		userCacheRepo: userCacheRepo,
		logger:        log,
	}

	consumer.RegisterHandler(messaging.EventUserCreated, c.handleUserCreated)
	consumer.RegisterHandler(messaging.EventUserUpdated, c.handleUserUpdated)
	consumer.RegisterHandler(messaging.EventUserDeleted, c.handleUserDeleted)

	return c, nil
}

// Start starts consuming messages
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *UserEventConsumer) handleUserCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserCreatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if data.AccountID == "" {
		return fmt.Errorf("user created event %s carries no account", event.ID)
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Str("name", data.Name).
		Msg("received user created event")

	// Events arrive outside any HTTP request, so account scope comes
	// from the event payload rather than a token.
	ctx = account.WithAccountID(ctx, data.AccountID)

	return c.userCacheRepo.Set(ctx, &repository.CachedUser{
		UserID: data.UserID,
		Name:   data.Name,
		Email:  optional(data.Email),
		Role:   optional(data.Role),
	})
}

func (c *UserEventConsumer) handleUserUpdated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserUpdatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if data.AccountID == "" {
		return fmt.Errorf("user updated event %s carries no account", event.ID)
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Msg("received user updated event")

	ctx = account.WithAccountID(ctx, data.AccountID)

	existing, err := c.userCacheRepo.Get(ctx, data.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if name, ok := data.Fields["name"].(map[string]interface{}); ok {
		if newName, ok := name["to"].(string); ok {
			existing.Name = newName
		}
	}
	if email, ok := data.Fields["email"].(map[string]interface{}); ok {
		if newEmail, ok := email["to"].(string); ok {
			existing.Email = optional(newEmail)
		}
	}

	return c.userCacheRepo.Set(ctx, existing)
}

func (c *UserEventConsumer) handleUserDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserDeletedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if data.AccountID == "" {
		return fmt.Errorf("user deleted event %s carries no account", event.ID)
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Msg("received user deleted event")

	ctx = account.WithAccountID(ctx, data.AccountID)

	return c.userCacheRepo.Delete(ctx, data.UserID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
