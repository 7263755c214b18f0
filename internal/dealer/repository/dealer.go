// Package repository persists the dealer roster: dealers, their notes
// and to-dos, and attached images. Every query is scoped to the account
// taken from the request context.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/boothbase/boothbase-backend/pkg/account"
	"github.com/boothbase/boothbase-backend/pkg/database"
	"github.com/boothbase/boothbase-backend/pkg/errors"
)

// Dealer is a roster record for one exhibitor contact
type Dealer struct {
	ID          string     `db:"id" json:"id"`
	AccountID   string     `db:"account_id" json:"-"`
	CompanyName string     `db:"company_name" json:"company_name"`
	ContactName string     `db:"contact_name" json:"contact_name"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	City        *string    `db:"city" json:"city,omitempty"`
	State       *string    `db:"state" json:"state,omitempty"`
	CreatedBy   *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

// SearchResult is a dealer row plus its trigram similarity to the query
type SearchResult struct {
	Dealer
	Similarity float64 `db:"similarity" json:"similarity"`
}

const dealerColumns = `id, account_id, company_name, contact_name, email, phone, city, state,
	       created_by, created_at, updated_at`

// DealerRepository handles dealer persistence
type DealerRepository struct {
	db *sqlx.DB
}

// NewDealerRepository creates a new dealer repository
func NewDealerRepository(db *sqlx.DB) *DealerRepository {
	return &DealerRepository{db: db}
}

// Create inserts a new dealer for the account in context
func (r *DealerRepository) Create(ctx context.Context, dealer *Dealer) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}
	if dealer.ID == "" {
		dealer.ID = uuid.New().String()
	}
	dealer.AccountID = accountID

	query := `
		INSERT INTO dealers (id, account_id, company_name, contact_name, email, phone, city, state, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		dealer.ID, accountID, dealer.CompanyName, dealer.ContactName,
		dealer.Email, dealer.Phone, dealer.City, dealer.State, dealer.CreatedBy,
	).Scan(&dealer.CreatedAt, &dealer.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// GetByID gets a dealer by ID within the account in context
func (r *DealerRepository) GetByID(ctx context.Context, id string) (*Dealer, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var dealer Dealer
	query := `
		SELECT ` + dealerColumns + `
		FROM dealers
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL
	`
	err = r.db.GetContext(ctx, &dealer, query, id, accountID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("dealer")
	}
	if err != nil {
		return nil, err
	}
	return &dealer, nil
}

// List returns a page of the account's dealers, newest first
func (r *DealerRepository) List(ctx context.Context, page, perPage int) ([]Dealer, int64, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM dealers WHERE account_id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, accountID); err != nil {
		return nil, 0, err
	}

	dealers := []Dealer{}
	query := `
		SELECT ` + dealerColumns + `
		FROM dealers
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	offset := (page - 1) * perPage
	if err := r.db.SelectContext(ctx, &dealers, query, accountID, perPage, offset); err != nil {
		return nil, 0, err
	}
	return dealers, total, nil
}

// Search runs a trigram similarity search over company and contact names.
// Results are the fetcher's candidate bag: plausible matches in rough
// similarity order, with no claim to authoritative ranking.
func (r *DealerRepository) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	results := []SearchResult{}
	sq := `
		SELECT ` + dealerColumns + `,
		       similarity(company_name || ' ' || contact_name, $2) AS similarity
		FROM dealers
		WHERE account_id = $1
		  AND deleted_at IS NULL
		  AND (company_name || ' ' || contact_name) % $2
		ORDER BY similarity DESC, id
		LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &results, sq, accountID, query, limit); err != nil {
		return nil, err
	}
	return results, nil
}

// Update updates a dealer's editable fields
func (r *DealerRepository) Update(ctx context.Context, dealer *Dealer) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE dealers
		SET company_name = $3, contact_name = $4, email = $5, phone = $6,
		    city = $7, state = $8, updated_at = NOW()
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		dealer.ID, accountID, dealer.CompanyName, dealer.ContactName,
		dealer.Email, dealer.Phone, dealer.City, dealer.State,
	).Scan(&dealer.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("dealer")
	}
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// Delete soft-deletes a dealer
func (r *DealerRepository) Delete(ctx context.Context, id string) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE dealers SET deleted_at = NOW()
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL
	`, id, accountID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("dealer")
	}
	return nil
}
