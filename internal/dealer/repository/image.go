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

// Image kinds
const (
	ImageKindBadge = "badge"
	ImageKindLogo  = "logo"
	ImageKindPhoto = "photo"
)

// Image is a binary attachment on a dealer record. Data is only loaded
// when a single image is fetched; listings carry metadata alone.
type Image struct {
	ID        string    `db:"id" json:"id"`
	DealerID  string    `db:"dealer_id" json:"dealer_id"`
	AccountID string    `db:"account_id" json:"-"`
	Kind      string    `db:"kind" json:"kind"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	SizeBytes int       `db:"size_bytes" json:"size_bytes"`
	Data      []byte    `db:"data" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ImageRepository handles dealer image persistence
type ImageRepository struct {
	db *sqlx.DB
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *sqlx.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create stores an image attachment for a dealer
func (r *ImageRepository) Create(ctx context.Context, img *Image) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}
	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	if img.Kind == "" {
		img.Kind = ImageKindBadge
	}
	img.AccountID = accountID
	img.SizeBytes = len(img.Data)

	query := `
		INSERT INTO dealer_images (id, dealer_id, account_id, kind, mime_type, size_bytes, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		img.ID, img.DealerID, accountID, img.Kind, img.MimeType, img.SizeBytes, img.Data,
	).Scan(&img.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// ListByDealer returns image metadata for a dealer, newest first
func (r *ImageRepository) ListByDealer(ctx context.Context, dealerID string) ([]Image, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	images := []Image{}
	query := `
		SELECT id, dealer_id, account_id, kind, mime_type, size_bytes, created_at
		FROM dealer_images
		WHERE dealer_id = $1 AND account_id = $2
		ORDER BY created_at DESC, id
	`
	if err := r.db.SelectContext(ctx, &images, query, dealerID, accountID); err != nil {
		return nil, err
	}
	return images, nil
}

// GetByID fetches a single image including its binary data
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*Image, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var img Image
	query := `
		SELECT id, dealer_id, account_id, kind, mime_type, size_bytes, data, created_at
		FROM dealer_images
		WHERE id = $1 AND account_id = $2
	`
	err = r.db.GetContext(ctx, &img, query, id, accountID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("image")
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}
