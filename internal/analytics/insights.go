package analytics

import (
	"time"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// TopCategory returns the category with the highest current-month expense.
// Ties resolve to whichever category was seen first in the snapshot
// (first-wins on equal max). Returns nil when no expense was recorded.
func TopCategory(totals PeriodTotals) *domain.Insight {
	if len(totals.ByCategory) == 0 {
		return nil
	}

	var best string
	bestAmount := -1.0
	for _, name := range totals.CategoryOrder {
		if amount := totals.ByCategory[name]; amount > bestAmount {
			best, bestAmount = name, amount
		}
	}

	return &domain.Insight{
		Name:       best,
		Amount:     bestAmount,
		Percentage: shareOf(bestAmount, totals.Expense),
	}
}

// ExpensiveDay returns the weekday carrying the largest current-month expense
// total (by amount, not by transaction count). Returns nil when no dated
// expense exists. Ties resolve to the earliest weekday, Sunday first, so the
// result is deterministic.
func ExpensiveDay(totals PeriodTotals) *domain.Insight {
	if len(totals.ByWeekday) == 0 {
		return nil
	}

	var best time.Weekday
	bestAmount := -1.0
	for day := time.Sunday; day <= time.Saturday; day++ {
		amount, ok := totals.ByWeekday[day]
		if !ok {
			continue
		}
		if amount > bestAmount {
			best, bestAmount = day, amount
		}
	}

	return &domain.Insight{
		Name:       best.String(),
		Amount:     bestAmount,
		Percentage: shareOf(bestAmount, totals.Expense),
	}
}

// shareOf is amount as a percentage of total, 0 when the total is 0.
func shareOf(amount, total float64) float64 {
	if total == 0 {
		return 0
	}
	return amount / total * 100
}
