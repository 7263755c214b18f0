package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/boothbase/boothbase-backend/pkg/account"
)

// CachedUser is a local copy of identity-service user data, kept fresh by
// the user event consumer. It exists so created_by fields on dealers and
// notes can be resolved to a display name without a cross-service call.
type CachedUser struct {
	UserID    string  `db:"user_id" json:"user_id"`
	AccountID string  `db:"account_id" json:"-"`
	Name      string  `db:"name" json:"name"`
	Email     *string `db:"email" json:"email,omitempty"`
	Role      *string `db:"role" json:"role,omitempty"`
}

// UserCacheRepository handles user cache persistence
type UserCacheRepository struct {
	db *sqlx.DB
}

// NewUserCacheRepository creates a new user cache repository
func NewUserCacheRepository(db *sqlx.DB) *UserCacheRepository {
	return &UserCacheRepository{db: db}
}

// Set creates or updates a cached user for the account in context
func (r *UserCacheRepository) Set(ctx context.Context, user *CachedUser) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}
	user.AccountID = accountID

	query := `
		INSERT INTO user_cache (user_id, account_id, name, email, role, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET name = $3, email = $4, role = $5, updated_at = NOW()
	`
	_, err = r.db.ExecContext(ctx, query, user.UserID, accountID, user.Name, user.Email, user.Role)
	return err
}

// Get gets a cached user by ID within the account in context.
// Returns nil without error when the user is not cached.
func (r *UserCacheRepository) Get(ctx context.Context, userID string) (*CachedUser, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var user CachedUser
	query := `
		SELECT user_id, account_id, name, email, role
		FROM user_cache
		WHERE user_id = $1 AND account_id = $2
	`
	err = r.db.GetContext(ctx, &user, query, userID, accountID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a cached user
func (r *UserCacheRepository) Delete(ctx context.Context, userID string) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM user_cache WHERE user_id = $1 AND account_id = $2`, userID, accountID)
	return err
}
