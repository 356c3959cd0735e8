package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statistics aggregates the entries loaded for one month window.
type Statistics struct {
	Total      int             `json:"total"`
	Greens     int             `json:"greens"`
	Reds       int             `json:"reds"`
	Pending    int             `json:"pending"`
	ProfitLoss decimal.Decimal `json:"profit_loss"`
	Today      int             `json:"today"` // entries dated referenceDate
}

// ComputeStatistics folds the loaded entries into summary counts and the
// running profit/loss total. Pending entries contribute zero to the sum.
// referenceDate is compared on the calendar day only.
func ComputeStatistics(entries []*Entry, referenceDate time.Time) Statistics {
	stats := Statistics{ProfitLoss: decimal.Zero}
	refY, refM, refD := referenceDate.Date()

	for _, e := range entries {
		stats.Total++
		switch e.Outcome {
		case OutcomeGreen:
			stats.Greens++
		case OutcomeRed:
			stats.Reds++
		default:
			stats.Pending++
		}
		stats.ProfitLoss = stats.ProfitLoss.Add(e.ProfitLoss)

		y, m, d := e.Date.Date()
		if y == refY && m == refM && d == refD {
			stats.Today++
		}
	}
	return stats
}
