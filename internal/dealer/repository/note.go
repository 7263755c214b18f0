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

// Note kinds
const (
	NoteKindNote = "note"
	NoteKindTodo = "todo"
)

// Note is a free-text note or to-do attached to a dealer
type Note struct {
	ID        string    `db:"id" json:"id"`
	DealerID  string    `db:"dealer_id" json:"dealer_id"`
	AccountID string    `db:"account_id" json:"-"`
	Kind      string    `db:"kind" json:"kind"`
	Body      string    `db:"body" json:"body"`
	Done      bool      `db:"done" json:"done"`
	CreatedBy *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NoteRepository handles dealer note persistence
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note for a dealer in the account in context
func (r *NoteRepository) Create(ctx context.Context, note *Note) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.Kind == "" {
		note.Kind = NoteKindNote
	}
	note.AccountID = accountID

	query := `
		INSERT INTO dealer_notes (id, dealer_id, account_id, kind, body, done, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		note.ID, note.DealerID, accountID, note.Kind, note.Body, note.Done, note.CreatedBy,
	).Scan(&note.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// ListByDealer returns a dealer's notes and to-dos, newest first
func (r *NoteRepository) ListByDealer(ctx context.Context, dealerID string) ([]Note, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	notes := []Note{}
	query := `
		SELECT id, dealer_id, account_id, kind, body, done, created_by, created_at
		FROM dealer_notes
		WHERE dealer_id = $1 AND account_id = $2
		ORDER BY created_at DESC, id
	`
	if err := r.db.SelectContext(ctx, &notes, query, dealerID, accountID); err != nil {
		return nil, err
	}
	return notes, nil
}

// Delete removes a note or to-do
func (r *NoteRepository) Delete(ctx context.Context, noteID string) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM dealer_notes WHERE id = $1 AND account_id = $2
	`, noteID, accountID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("note")
	}
	return nil
}

// SetDone marks a to-do as done or not done
func (r *NoteRepository) SetDone(ctx context.Context, noteID string, done bool) (*Note, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var note Note
	query := `
		UPDATE dealer_notes SET done = $3
		WHERE id = $1 AND account_id = $2 AND kind = 'todo'
		RETURNING id, dealer_id, account_id, kind, body, done, created_by, created_at
	`
	err = r.db.GetContext(ctx, &note, query, noteID, accountID, done)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("todo")
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}
