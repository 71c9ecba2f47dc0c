// Package tips turns a composed dashboard snapshot into one short piece of
// saving advice. The engine treats providers as opaque: snapshot in, text
// out; nothing here feeds back into aggregation.
package tips

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// Tip is one generated piece of advice. IsAI distinguishes model output from
// the built-in rule-based fallback.
type Tip struct {
	Text string `json:"text"`
	IsAI bool   `json:"isAi"`
}

// Provider generates a tip from a snapshot.
type Provider interface {
	Generate(ctx context.Context, snap *domain.DashboardSnapshot) (Tip, error)
}

// Static is the rule-based fallback provider. It is deterministic for a given
// snapshot and never fails, which also makes it the safety net behind the
// model-backed provider.
type Static struct{}

// Generate implements Provider.
func (Static) Generate(_ context.Context, snap *domain.DashboardSnapshot) (Tip, error) {
	return Tip{Text: staticText(snap), IsAI: false}, nil
}

func staticText(snap *domain.DashboardSnapshot) string {
	switch {
	case snap == nil:
		return "Record your first transaction to start seeing where your money goes."
	case snap.AntExpenses.Count >= 5:
		return fmt.Sprintf("You made %d small purchases this month totalling %.2f. Ant expenses add up; batching them is the easiest saving you'll find.",
			snap.AntExpenses.Count, snap.AntExpenses.Total)
	case snap.SpendingTrend != nil && snap.SpendingTrend.Direction == domain.TrendUp && snap.SpendingTrend.Percentage >= 20:
		return fmt.Sprintf("Spending is up %.0f%% on last month. Worth a look at what changed before it becomes the new normal.",
			snap.SpendingTrend.Percentage)
	case snap.TopCategory != nil && snap.TopCategory.Percentage >= 40:
		return fmt.Sprintf("%s takes %.0f%% of this month's spending. A cap on that one category moves the needle more than anything else.",
			snap.TopCategory.Name, snap.TopCategory.Percentage)
	case snap.NetFlow < 0:
		return "You spent more than you earned this month. Reviewing the biggest category is usually the fastest way back to positive."
	default:
		return "Your month looks balanced. Consider moving the surplus somewhere it earns."
	}
}

// buildPrompt summarizes the snapshot into a compact instruction for the
// model. Only aggregates are sent, never individual transactions.
func buildPrompt(snap *domain.DashboardSnapshot) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant.\n\n")
	b.WriteString("Given this monthly summary, reply with ONE actionable saving tip.\n")
	b.WriteString("Plain text only, at most two sentences, no markdown, no preamble.\n\n")

	fmt.Fprintf(&b, "- income: %.2f\n- expense: %.2f\n- net flow: %.2f\n",
		snap.Income, snap.Expense, snap.NetFlow)
	if snap.TopCategory != nil {
		fmt.Fprintf(&b, "- top spending category: %s (%.0f%% of expenses)\n",
			snap.TopCategory.Name, snap.TopCategory.Percentage)
	}
	if snap.AntExpenses.Count > 0 {
		fmt.Fprintf(&b, "- micro-expenses under 10: %d totalling %.2f\n",
			snap.AntExpenses.Count, snap.AntExpenses.Total)
	}
	if snap.ExpensiveDay != nil {
		fmt.Fprintf(&b, "- costliest weekday: %s\n", snap.ExpensiveDay.Name)
	}
	if snap.SpendingTrend != nil {
		fmt.Fprintf(&b, "- spending vs last month: %.0f%% %s\n",
			snap.SpendingTrend.Percentage, snap.SpendingTrend.Direction)
	}
	return b.String()
}
