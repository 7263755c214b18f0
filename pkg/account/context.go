// Package account carries the subscribing company's identity through request
// context. Every dealer roster, note, and badge scan belongs to exactly one
// account; repositories use the account ID from context to scope queries.
package account

import (
	"context"
	"errors"
)

// contextKey is a private type for context keys to prevent collisions
type contextKey string

const (
	accountIDKey   contextKey = "account_id"
	accountSlugKey contextKey = "account_slug"
)

var (
	// ErrNoAccountInContext is returned when account context is missing
	ErrNoAccountInContext = errors.New("no account in context")
)

// WithAccount adds account identity to the context.
// This should be called by middleware after extracting the account from the JWT.
func WithAccount(ctx context.Context, id, slug string) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, id)
	ctx = context.WithValue(ctx, accountSlugKey, slug)
	return ctx
}

// WithAccountID adds only the account ID to context
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountID extracts the account ID from context.
// Returns ErrNoAccountInContext if it is not present.
func AccountID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(accountIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoAccountInContext
	}
	return id, nil
}

// AccountSlug extracts the account slug from context.
func AccountSlug(ctx context.Context) (string, error) {
	slug, ok := ctx.Value(accountSlugKey).(string)
	if !ok || slug == "" {
		return "", ErrNoAccountInContext
	}
	return slug, nil
}

// MustAccountID extracts the account ID from context and panics if not found.
// Use only in cases where a missing account is a programming error.
func MustAccountID(ctx context.Context) string {
	id, err := AccountID(ctx)
	if err != nil {
		panic("account ID not found in context")
	}
	return id
}
