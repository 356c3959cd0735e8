package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// EntryKind is the event category a LAY entry was placed on.
type EntryKind string

const (
	KindHorse     EntryKind = "horse"
	KindGreyhound EntryKind = "greyhound"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	return k == KindHorse || k == KindGreyhound
}

// Outcome represents the resolution state of an entry.
type Outcome string

const (
	OutcomeGreen   Outcome = "green"   // lay bet won: user keeps the stake
	OutcomeRed     Outcome = "red"     // lay bet lost: user forfeits the liability
	OutcomePending Outcome = "pending" // not yet settled
)

// Resolvable reports whether o is a terminal outcome a user may set.
func (o Outcome) Resolvable() bool {
	return o == OutcomeGreen || o == OutcomeRed
}

// minLayOdds is the floor the lay-odds derivation clamps to.
var minLayOdds = decimal.NewFromInt(1)

// ──────────────────────────────────────────────────────────────────────────────
// Derivations
// ──────────────────────────────────────────────────────────────────────────────

// DeriveLayOdds converts the quoted back odds to the lay side:
//
//	lay = max(original − 1, 1)
//
// The clamp guarantees LayOdds ≥ 1 for any input.
func DeriveLayOdds(originalOdds decimal.Decimal) decimal.Decimal {
	lay := originalOdds.Sub(decimal.NewFromInt(1))
	if lay.LessThan(minLayOdds) {
		return minLayOdds
	}
	return lay
}

// DeriveLiability computes the amount at risk on a lay bet:
//
//	liability = stake × (layOdds − 1)
//
// When layOdds = 1 (original odds ≤ 2) the liability is zero; that is a
// defined result, not an error.
func DeriveLiability(stakeToWin, layOdds decimal.Decimal) decimal.Decimal {
	return stakeToWin.Mul(layOdds.Sub(decimal.NewFromInt(1)))
}

// EffectiveStake resolves the stake used for a new entry. Precedence:
// the explicit stake when positive, then the goal's suggested stake when
// positive, then the configured fallback.
func EffectiveStake(explicit, suggested, fallback decimal.Decimal) decimal.Decimal {
	if explicit.IsPositive() {
		return explicit
	}
	if suggested.IsPositive() {
		return suggested
	}
	return fallback
}

// ──────────────────────────────────────────────────────────────────────────────
// Entry
// ──────────────────────────────────────────────────────────────────────────────

// Entry is one LAY bet recorded against a horse or greyhound event.
// LayOdds and Liability are derived from OriginalOdds and StakeToWin at
// creation time and stored alongside the inputs.
type Entry struct {
	ID           uuid.UUID       `json:"id"            db:"id"`
	UserID       uuid.UUID       `json:"user_id"       db:"user_id"`
	Date         time.Time       `json:"date"          db:"entry_date"`
	Kind         EntryKind       `json:"kind"          db:"kind"`
	OriginalOdds decimal.Decimal `json:"original_odds" db:"original_odds"`
	LayOdds      decimal.Decimal `json:"lay_odds"      db:"lay_odds"`
	StakeToWin   decimal.Decimal `json:"stake_to_win"  db:"stake_to_win"`
	Liability    decimal.Decimal `json:"liability"     db:"liability"`
	Outcome      Outcome         `json:"outcome"       db:"outcome"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"   db:"profit_loss"`
	Note         string          `json:"note"          db:"note"`
	CreatedAt    time.Time       `json:"created_at"    db:"created_at"`
}

// IsPending returns true while the entry has no settled outcome.
func (e *Entry) IsPending() bool {
	return e.Outcome == OutcomePending
}

// Resolve settles the entry and fixes its profit/loss:
//
//	green → +StakeToWin
//	red   → −Liability
//
// Re-resolving an already settled entry overwrites the prior result; the
// figures are recomputed from the stored stake and liability, so a
// correction always lands on the same values a first resolution would.
func (e *Entry) Resolve(outcome Outcome) error {
	if !outcome.Resolvable() {
		return ErrInvalidOutcome
	}
	e.Outcome = outcome
	if outcome == OutcomeGreen {
		e.ProfitLoss = e.StakeToWin
	} else {
		e.ProfitLoss = e.Liability.Neg()
	}
	return nil
}
