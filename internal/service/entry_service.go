package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rcmalta/laytrack/internal/config"
	"github.com/rcmalta/laytrack/internal/domain"
	"github.com/rcmalta/laytrack/internal/repository"
	"github.com/shopspring/decimal"
)

// EntryService is the ledger of LAY entries for the viewed month.
type EntryService struct {
	entryRepo *repository.EntryRepository
	goalSvc   *GoalService
	cfg       *config.Config

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

// NewEntryService creates an EntryService.
func NewEntryService(entryRepo *repository.EntryRepository, goalSvc *GoalService, cfg *config.Config) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		goalSvc:   goalSvc,
		cfg:       cfg,
		now:       time.Now,
	}
}

// MonthWindow returns the first and last calendar day of the given month.
func MonthWindow(month, year int) (from, to time.Time, err error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, domain.ErrInvalidMonth
	}
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	return from, to, nil
}

// MonthView is what a ledger load returns: the entries of the window plus
// the aggregate statistics computed over them. Month and Year echo the
// requested window so a client that has since navigated away can discard
// a stale response.
type MonthView struct {
	Month   int               `json:"month"`
	Year    int               `json:"year"`
	Entries []*domain.Entry   `json:"entries"`
	Stats   domain.Statistics `json:"stats"`
}

// ListMonth loads the user's entries dated within the given month,
// ordered most recent first, and computes their statistics against
// today's date. An empty month yields an empty list, not an error.
func (s *EntryService) ListMonth(ctx context.Context, userID uuid.UUID, month, year int) (*MonthView, error) {
	from, to, err := MonthWindow(month, year)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListWindow(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*domain.Entry{}
	}

	return &MonthView{
		Month:   month,
		Year:    year,
		Entries: entries,
		Stats:   domain.ComputeStatistics(entries, s.now().UTC()),
	}, nil
}

// AddEntryRequest carries the user's inputs for a new LAY entry. Stake is
// optional: when absent or non-positive the goal's derived suggested
// stake applies, then the configured fallback. The decimal fields accept
// JSON numbers or strings and carry no validator rules; range checks
// happen below, before any store write.
type AddEntryRequest struct {
	Kind         domain.EntryKind `json:"kind" binding:"required"`
	OriginalOdds decimal.Decimal  `json:"original_odds"`
	StakeToWin   decimal.Decimal  `json:"stake_to_win"`
	Note         string           `json:"note" binding:"max=500"`
}

// AddEntry validates the candidate, derives lay odds and liability, and
// persists a new pending entry dated today. Validation failures reject
// the candidate before any store write.
func (s *EntryService) AddEntry(ctx context.Context, userID uuid.UUID, req AddEntryRequest) (*domain.Entry, error) {
	if !req.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	if req.OriginalOdds.LessThanOrEqual(decimal.NewFromInt(1)) {
		return nil, domain.ErrInvalidOdds
	}

	today := s.now().UTC()
	suggested, err := s.goalSvc.SuggestedStakeFor(ctx, userID, int(today.Month()), today.Year())
	if err != nil {
		return nil, err
	}

	stake := domain.EffectiveStake(req.StakeToWin, suggested, s.cfg.Goal.FallbackStake)
	layOdds := domain.DeriveLayOdds(req.OriginalOdds)

	entry := &domain.Entry{
		UserID:       userID,
		Date:         time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		Kind:         req.Kind,
		OriginalOdds: req.OriginalOdds,
		LayOdds:      layOdds,
		StakeToWin:   stake,
		Liability:    domain.DeriveLiability(stake, layOdds),
		Outcome:      domain.OutcomePending,
		ProfitLoss:   decimal.Zero,
		Note:         req.Note,
	}

	return s.entryRepo.Insert(ctx, entry)
}

// ResolveEntry settles an entry green or red and persists the resulting
// (outcome, profit_loss) pair. A missing id is a silent no-op returning
// (nil, nil): it only happens when the client acts on stale state.
// Re-resolving an already settled entry overwrites the prior result.
func (s *EntryService) ResolveEntry(ctx context.Context, userID, entryID uuid.UUID, outcome domain.Outcome) (*domain.Entry, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if err := entry.Resolve(outcome); err != nil {
		return nil, err
	}

	updated, err := s.entryRepo.UpdateOutcome(ctx, entryID, userID, entry.Outcome, entry.ProfitLoss)
	if err != nil {
		if domain.IsNotFound(err) {
			// Deleted between the read and the write: same stale-state no-op.
			return nil, nil
		}
		return nil, err
	}
	return updated, nil
}

// DeleteEntry removes an entry in any outcome state. Deleting an id that
// is already gone succeeds: the operation is idempotent.
func (s *EntryService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	return s.entryRepo.Delete(ctx, entryID, userID)
}
