package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal holds one calendar month's target configuration for a user.
// (user_id, month, year) is a natural key; the goals table enforces it
// with a unique constraint and saves go through an upsert targeting it.
type Goal struct {
	ID            uuid.UUID       `json:"id"              db:"id"`
	UserID        uuid.UUID       `json:"user_id"         db:"user_id"`
	Month         int             `json:"month"           db:"month"`
	Year          int             `json:"year"            db:"year"`
	MonthlyTarget decimal.Decimal `json:"monthly_target"  db:"monthly_target"`
	OperatingDays int             `json:"operating_days"  db:"operating_days"`
	EntriesPerDay int             `json:"entries_per_day" db:"entries_per_day"`
	StakePerEntry decimal.Decimal `json:"stake_per_entry" db:"stake_per_entry"`
	CreatedAt     time.Time       `json:"created_at"      db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"      db:"updated_at"`
}

// SuggestedStake derives the stake per entry needed to hit the monthly
// target:
//
//	target / (operating_days × entries_per_day)
//
// A zero product yields decimal.Zero rather than an error; the division
// is simply undefined until the user fills in both counts.
func (g *Goal) SuggestedStake() decimal.Decimal {
	total := g.OperatingDays * g.EntriesPerDay
	if total <= 0 {
		return decimal.Zero
	}
	return g.MonthlyTarget.Div(decimal.NewFromInt(int64(total)))
}

// GoalDefaults are the values a month starts with before the user has
// saved anything. Loaded from config at boot.
type GoalDefaults struct {
	MonthlyTarget decimal.Decimal
	OperatingDays int
	EntriesPerDay int
	StakePerEntry decimal.Decimal
}

// NewDefaultGoal builds an unsaved in-memory goal for the requested
// month. The zero ID marks it as not yet persisted.
func NewDefaultGoal(userID uuid.UUID, month, year int, d GoalDefaults) *Goal {
	return &Goal{
		UserID:        userID,
		Month:         month,
		Year:          year,
		MonthlyTarget: d.MonthlyTarget,
		OperatingDays: d.OperatingDays,
		EntriesPerDay: d.EntriesPerDay,
		StakePerEntry: d.StakePerEntry,
	}
}
