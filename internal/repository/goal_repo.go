package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rcmalta/laytrack/internal/domain"
)

// GoalRepository handles all database operations for monthly goals.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// GetByMonth fetches the unique goal row for (user, month, year).
// Returns domain.ErrGoalNotFound when no row exists; callers are expected
// to substitute an in-memory default rather than treat this as a failure.
func (r *GoalRepository) GetByMonth(ctx context.Context, userID uuid.UUID, month, year int) (*domain.Goal, error) {
	var g domain.Goal
	err := r.db.GetContext(ctx, &g,
		`SELECT * FROM goals WHERE user_id = $1 AND month = $2 AND year = $3`,
		userID, month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("goal_repo.GetByMonth: %w", err)
	}
	return &g, nil
}

// Upsert inserts the goal or, when a row already exists for the natural
// key (user_id, month, year), updates it in place stamping updated_at.
// Returns the persisted row.
func (r *GoalRepository) Upsert(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	var saved domain.Goal
	err := r.db.GetContext(ctx, &saved, `
		INSERT INTO goals
			(id, user_id, month, year, monthly_target, operating_days, entries_per_day, stake_per_entry, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (user_id, month, year) DO UPDATE
		SET monthly_target  = EXCLUDED.monthly_target,
		    operating_days  = EXCLUDED.operating_days,
		    entries_per_day = EXCLUDED.entries_per_day,
		    stake_per_entry = EXCLUDED.stake_per_entry,
		    updated_at      = now()
		RETURNING *`,
		uuid.New(), g.UserID, g.Month, g.Year,
		g.MonthlyTarget, g.OperatingDays, g.EntriesPerDay, g.StakePerEntry)
	if err != nil {
		return nil, fmt.Errorf("goal_repo.Upsert: %w", err)
	}
	return &saved, nil
}
