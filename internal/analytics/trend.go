package analytics

import (
	"math"
	"time"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// TrendMonths is the fixed width of the rolling trend window: the current
// month plus the five before it.
const TrendMonths = 6

// BuildTrendSeries buckets the transaction snapshot into the six calendar
// months ending at now and flattens the result into a chronological series
// with one income and one expense point per month, in that order.
//
// Buckets are keyed by year+month internally, so reusing this for windows
// longer than a year cannot silently merge same-named months.
func BuildTrendSeries(txs []domain.Transaction, now time.Time) []domain.TrendPoint {
	window := MonthWindow(now, TrendMonths)
	buckets := make(map[MonthKey]*domain.MonthBucket, len(window))
	for _, k := range window {
		buckets[k] = &domain.MonthBucket{}
	}

	for _, tx := range txs {
		if !tx.HasValidDate() {
			continue
		}
		bucket, ok := buckets[KeyOf(tx.Date)]
		if !ok {
			continue
		}
		switch tx.Type {
		case domain.TypeIncome:
			bucket.Income += tx.Amount
		case domain.TypeExpense:
			bucket.Expense += tx.Amount
		}
	}

	series := make([]domain.TrendPoint, 0, len(window)*2)
	for _, k := range window {
		b := buckets[k]
		series = append(series,
			domain.TrendPoint{Label: k.Label(), Value: b.Income, Type: domain.TrendIncome},
			domain.TrendPoint{Label: k.Label(), Value: b.Expense, Type: domain.TrendExpense},
		)
	}
	return series
}

// SpendingTrend compares the current month's expense total with the previous
// month's. When either side is zero there is nothing meaningful to compare
// and the trend is nil, never ±Inf or a fabricated 0%.
func ComputeSpendingTrend(txs []domain.Transaction, now time.Time) *domain.SpendingTrend {
	// Step back from the first of the month so that e.g. March 31 does not
	// normalize into March again.
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	current := monthExpense(txs, now)
	prior := monthExpense(txs, firstOfMonth.AddDate(0, -1, 0))

	if prior == 0 || current == 0 {
		return nil
	}

	trend := &domain.SpendingTrend{
		Percentage: math.Abs(current-prior) / prior * 100,
		Direction:  domain.TrendDown,
	}
	if current > prior {
		trend.Direction = domain.TrendUp
	}
	return trend
}

func monthExpense(txs []domain.Transaction, ref time.Time) float64 {
	var total float64
	for _, tx := range txs {
		if tx.Type != domain.TypeExpense || !tx.HasValidDate() {
			continue
		}
		if SameMonth(tx.Date, ref) {
			total += tx.Amount
		}
	}
	return total
}
