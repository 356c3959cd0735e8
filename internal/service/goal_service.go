package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rcmalta/laytrack/internal/config"
	"github.com/rcmalta/laytrack/internal/domain"
	"github.com/rcmalta/laytrack/internal/repository"
	"github.com/shopspring/decimal"
)

// GoalService loads and saves monthly goal configurations.
type GoalService struct {
	goalRepo *repository.GoalRepository
	cfg      *config.Config
}

// NewGoalService creates a GoalService.
func NewGoalService(goalRepo *repository.GoalRepository, cfg *config.Config) *GoalService {
	return &GoalService{goalRepo: goalRepo, cfg: cfg}
}

// defaults builds the GoalDefaults from configuration.
func (s *GoalService) defaults() domain.GoalDefaults {
	return domain.GoalDefaults{
		MonthlyTarget: s.cfg.Goal.DefaultTarget,
		OperatingDays: s.cfg.Goal.DefaultDays,
		EntriesPerDay: s.cfg.Goal.DefaultEntriesPerDay,
		StakePerEntry: s.cfg.Goal.FallbackStake,
	}
}

// LoadGoal fetches the stored goal for (user, month, year). When the
// month has no saved goal yet, a default-valued in-memory goal is
// returned instead — it is not persisted until the user saves an edit.
func (s *GoalService) LoadGoal(ctx context.Context, userID uuid.UUID, month, year int) (*domain.Goal, error) {
	if month < 1 || month > 12 {
		return nil, domain.ErrInvalidMonth
	}

	goal, err := s.goalRepo.GetByMonth(ctx, userID, month, year)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewDefaultGoal(userID, month, year, s.defaults()), nil
		}
		return nil, err
	}
	return goal, nil
}

// SaveGoalRequest carries an edited goal to SaveGoal. The decimal fields
// accept JSON numbers or strings and carry no validator rules.
type SaveGoalRequest struct {
	Month         int             `json:"month"           binding:"required,min=1,max=12"`
	Year          int             `json:"year"            binding:"required,min=2000,max=2200"`
	MonthlyTarget decimal.Decimal `json:"monthly_target"`
	OperatingDays int             `json:"operating_days"  binding:"min=0"`
	EntriesPerDay int             `json:"entries_per_day" binding:"min=0"`
	StakePerEntry decimal.Decimal `json:"stake_per_entry"`
}

// SaveGoal upserts the goal keyed on (user_id, month, year) and returns
// the persisted row. On a store error nothing is mutated: the caller's
// previously confirmed state stays authoritative.
func (s *GoalService) SaveGoal(ctx context.Context, userID uuid.UUID, req SaveGoalRequest) (*domain.Goal, error) {
	goal := &domain.Goal{
		UserID:        userID,
		Month:         req.Month,
		Year:          req.Year,
		MonthlyTarget: req.MonthlyTarget,
		OperatingDays: req.OperatingDays,
		EntriesPerDay: req.EntriesPerDay,
		StakePerEntry: req.StakePerEntry,
	}
	return s.goalRepo.Upsert(ctx, goal)
}

// SuggestedStakeFor returns the derived stake for the user's stored goal
// of the given month, falling back to the defaults when none is saved.
// Used by the entry ledger when a candidate entry carries no explicit
// stake.
func (s *GoalService) SuggestedStakeFor(ctx context.Context, userID uuid.UUID, month, year int) (decimal.Decimal, error) {
	goal, err := s.LoadGoal(ctx, userID, month, year)
	if err != nil {
		return decimal.Zero, err
	}
	return goal.SuggestedStake(), nil
}
