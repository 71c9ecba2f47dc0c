package analytics

import (
	"time"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// AntThreshold is the exclusive upper bound, in currency units, below which a
// current-month expense counts as an "ant expense".
const AntThreshold = 10.0

// PeriodTotals is the output of one aggregation pass over a full transaction
// snapshot, scoped to the month containing the reference time (except
// Balance, which is lifetime).
type PeriodTotals struct {
	// Balance nets all typed transactions regardless of month. Net-flow
	// approximation only; it is not reconciled against account balances.
	Balance float64

	Income  float64
	Expense float64

	// ByCategory and ByWeekday cover current-month expenses only.
	// Weekdays use the transaction's own date in the local calendar.
	ByCategory map[string]float64
	ByWeekday  map[time.Weekday]float64

	// CategoryOrder records first-seen order of ByCategory keys so that
	// later ranking can break ties deterministically.
	CategoryOrder []string

	Ant domain.AntExpenses
}

// NetFlow is current-month income minus current-month expense.
func (p PeriodTotals) NetFlow() float64 {
	return p.Income - p.Expense
}

// AggregatePeriod runs the monthly aggregation pass. now fixes which month is
// "current"; transactions with invalid dates contribute to Balance (which
// needs no date) and to nothing else.
func AggregatePeriod(txs []domain.Transaction, now time.Time) PeriodTotals {
	totals := PeriodTotals{
		ByCategory: make(map[string]float64),
		ByWeekday:  make(map[time.Weekday]float64),
	}

	for _, tx := range txs {
		switch tx.Type {
		case domain.TypeIncome:
			totals.Balance += tx.Amount
		case domain.TypeExpense:
			totals.Balance -= tx.Amount
		default:
			continue
		}

		if !tx.HasValidDate() || !SameMonth(tx.Date, now) {
			continue
		}

		if tx.Type == domain.TypeIncome {
			totals.Income += tx.Amount
			continue
		}

		totals.Expense += tx.Amount

		cat := tx.CategoryOrDefault()
		if _, seen := totals.ByCategory[cat]; !seen {
			totals.CategoryOrder = append(totals.CategoryOrder, cat)
		}
		totals.ByCategory[cat] += tx.Amount
		totals.ByWeekday[tx.Date.Weekday()] += tx.Amount

		if tx.Amount < AntThreshold {
			totals.Ant.Count++
			totals.Ant.Total += tx.Amount
		}
	}

	return totals
}
