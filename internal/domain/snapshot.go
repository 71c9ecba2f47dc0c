package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// Everything in this file is derived data: recomputed in full from the latest
// store snapshot on every feed update and never persisted. A value here is a
// pure function of its inputs; no derived entity carries state between runs.

// MonthBucket accumulates income and expense for one calendar month.
type MonthBucket struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// CategoryTotal is the accumulated expense for one category.
type CategoryTotal struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// WeekdayTotal is the accumulated expense for one day of the week.
type WeekdayTotal struct {
	Day    time.Weekday `json:"day"`
	Amount float64      `json:"amount"`
}

// TrendPointType labels a trend series entry as the income or expense half of
// its month.
type TrendPointType string

const (
	TrendIncome  TrendPointType = "income"
	TrendExpense TrendPointType = "expense"
)

// TrendPoint is one entry of the rolling trend series.
type TrendPoint struct {
	Label string         `json:"label"`
	Value float64        `json:"value"`
	Type  TrendPointType `json:"type"`
}

// TrendDirection says whether spending moved up or down month over month.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
)

// SpendingTrend compares the current month's expense total to the previous
// month's. Absent (nil) whenever either month has zero expense; a nil trend
// means "no comparison possible", never a 0% or infinite trend.
type SpendingTrend struct {
	Percentage float64        `json:"percentage"`
	Direction  TrendDirection `json:"direction"`
}

// Insight is a single named finding (top category, costliest weekday) with
// its share of the month's total expense. A nil *Insight means the insight is
// unavailable, which consumers must treat differently from a zero value.
type Insight struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// AntExpenses tracks current-month micro-spends below the ant threshold.
type AntExpenses struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// BreakdownEntry is one display row of the category breakdown.
type BreakdownEntry struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

// UpcomingPayment is one service's next expected charge.
type UpcomingPayment struct {
	Service         Service    `json:"service"`
	NextPaymentDate civil.Date `json:"nextPaymentDate"`
}

// DebtItem is one pending debt in a debtor's breakdown. Deliberately a closed
// record: service name, amount, month label, nothing else.
type DebtItem struct {
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`
	Month   string  `json:"month"`
}

// DebtorSummary is one person's pending total across shared services.
type DebtorSummary struct {
	Name      string     `json:"name"`
	Total     float64    `json:"total"`
	Breakdown []DebtItem `json:"breakdown"`
}

// SubscriberStats is the rollup over all shared services.
//
// Identity is the subscriber's trimmed name, case-sensitive: "Ana" and "ana"
// count as two people. That mirrors how the data is actually keyed upstream;
// deduping differently here would silently disagree with the store.
type SubscriberStats struct {
	TotalSubscribers int             `json:"totalSubscribers"`
	TotalDebtors     int             `json:"totalDebtors"`
	TopDebtors       []DebtorSummary `json:"topDebtors"`
}

// DashboardSnapshot is the root aggregate handed to presentation. Once
// published a snapshot is never mutated; recomputation builds a fresh value
// and swaps the pointer.
type DashboardSnapshot struct {
	// Balance nets every typed transaction ever seen, regardless of month
	// or account. It is a lifetime net-flow approximation, not a reconciled
	// account balance.
	Balance float64 `json:"balance"`

	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	NetFlow float64 `json:"netFlow"`

	TopCategory  *Insight    `json:"topCategory"`
	AntExpenses  AntExpenses `json:"antExpenses"`
	ExpensiveDay *Insight    `json:"expensiveDay"`

	TrendSeries       []TrendPoint     `json:"trendSeries"`
	SpendingTrend     *SpendingTrend   `json:"spendingTrend"`
	CategoryBreakdown []BreakdownEntry `json:"categoryBreakdown"`

	UpcomingPayments []UpcomingPayment `json:"upcomingPayments"`
	SubscriberStats  SubscriberStats   `json:"subscriberStats"`
}
