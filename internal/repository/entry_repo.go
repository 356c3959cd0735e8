package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rcmalta/laytrack/internal/domain"
	"github.com/shopspring/decimal"
)

// EntryRepository handles all database operations for LAY entries.
type EntryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// ListWindow returns the user's entries whose date falls within
// [from, to] inclusive, most recently created first. An empty window
// yields an empty slice, not an error.
func (r *EntryRepository) ListWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM entries
		WHERE user_id = $1
		  AND entry_date >= $2
		  AND entry_date <= $3
		ORDER BY created_at DESC`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("entry_repo.ListWindow: %w", err)
	}
	return entries, nil
}

// GetByID fetches a single entry owned by the given user.
func (r *EntryRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Entry, error) {
	var e domain.Entry
	err := r.db.GetContext(ctx, &e,
		`SELECT * FROM entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("entry_repo.GetByID: %w", err)
	}
	return &e, nil
}

// Insert persists a new entry and returns the created row, including the
// store-assigned id and created_at.
func (r *EntryRepository) Insert(ctx context.Context, e *domain.Entry) (*domain.Entry, error) {
	var created domain.Entry
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO entries
			(id, user_id, entry_date, kind, original_odds, lay_odds, stake_to_win, liability, outcome, profit_loss, note, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		RETURNING *`,
		uuid.New(), e.UserID, e.Date, e.Kind,
		e.OriginalOdds, e.LayOdds, e.StakeToWin, e.Liability,
		e.Outcome, e.ProfitLoss, e.Note)
	if err != nil {
		return nil, fmt.Errorf("entry_repo.Insert: %w", err)
	}
	return &created, nil
}

// UpdateOutcome persists the (outcome, profit_loss) pair of a resolution
// and returns the updated row. Returns domain.ErrEntryNotFound when the
// id does not exist for this user.
func (r *EntryRepository) UpdateOutcome(ctx context.Context, id, userID uuid.UUID, outcome domain.Outcome, profitLoss decimal.Decimal) (*domain.Entry, error) {
	var updated domain.Entry
	err := r.db.GetContext(ctx, &updated, `
		UPDATE entries
		SET outcome     = $1,
		    profit_loss = $2
		WHERE id = $3 AND user_id = $4
		RETURNING *`,
		outcome, profitLoss, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("entry_repo.UpdateOutcome: %w", err)
	}
	return &updated, nil
}

// Delete removes an entry by id. Deleting an id that is already absent
// is not an error; the operation is idempotent from the caller's side.
func (r *EntryRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("entry_repo.Delete: %w", err)
	}
	return nil
}
