package analytics

import (
	"sort"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// maxBreakdownEntries caps the breakdown for display. With more than five
// distinct categories the top four survive and the rest fold into "Others".
const maxBreakdownEntries = 5

// OthersLabel names the folded long-tail entry.
const OthersLabel = "Others"

// othersColor is a fixed neutral; the folded entry never takes a palette slot.
const othersColor = "#9CA3AF"

// palette is assigned round-robin by rank to the named entries.
var palette = []string{"#6366F1", "#F59E0B", "#10B981", "#EF4444", "#3B82F6"}

// BuildBreakdown ranks current-month categories by descending spend and folds
// the tail beyond the top four into a single "Others" entry whenever more
// than five categories exist. Each entry carries its share of the month's
// total expense (0 when the total is 0).
func BuildBreakdown(totals PeriodTotals) []domain.BreakdownEntry {
	ranked := make([]domain.CategoryTotal, 0, len(totals.ByCategory))
	for _, name := range totals.CategoryOrder {
		ranked = append(ranked, domain.CategoryTotal{Name: name, Amount: totals.ByCategory[name]})
	}
	// Stable sort keeps first-seen order among equal amounts.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount > ranked[j].Amount
	})

	folded := -1
	if len(ranked) > maxBreakdownEntries {
		head := ranked[:maxBreakdownEntries-1]
		var tail float64
		for _, c := range ranked[maxBreakdownEntries-1:] {
			tail += c.Amount
		}
		ranked = append(append([]domain.CategoryTotal{}, head...),
			domain.CategoryTotal{Name: OthersLabel, Amount: tail})
		folded = len(ranked) - 1
	}

	entries := make([]domain.BreakdownEntry, 0, len(ranked))
	for i, c := range ranked {
		color := palette[i%len(palette)]
		if i == folded {
			color = othersColor
		}
		entries = append(entries, domain.BreakdownEntry{
			Name:       c.Name,
			Amount:     c.Amount,
			Color:      color,
			Percentage: shareOf(c.Amount, totals.Expense),
		})
	}
	return entries
}
