package analytics

import (
	"testing"
	"time"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

func TestBuildTrendSeriesShape(t *testing.T) {
	// No transactions this month, two prior months populated: still a full
	// 12-point series (6 months x income+expense) with zeroed current month.
	oneBack := testNow.AddDate(0, -1, 0)
	twoBack := testNow.AddDate(0, -2, 0)
	txs := []domain.Transaction{
		tx(domain.TypeExpense, 120, "Rent", oneBack),
		tx(domain.TypeIncome, 900, "", oneBack),
		tx(domain.TypeExpense, 80, "Rent", twoBack),
	}

	series := BuildTrendSeries(txs, testNow)

	if len(series) != 12 {
		t.Fatalf("series has %d points, want 12", len(series))
	}

	// Chronological, income before expense within each month.
	for i := 0; i < len(series); i += 2 {
		if series[i].Type != domain.TrendIncome || series[i+1].Type != domain.TrendExpense {
			t.Fatalf("month %d points ordered %s/%s, want income/expense", i/2, series[i].Type, series[i+1].Type)
		}
		if series[i].Label != series[i+1].Label {
			t.Fatalf("month %d labels disagree: %q vs %q", i/2, series[i].Label, series[i+1].Label)
		}
	}

	// Current month (last pair) must be all zero.
	if series[10].Value != 0 || series[11].Value != 0 {
		t.Errorf("current month = %v/%v, want 0/0", series[10].Value, series[11].Value)
	}

	// Previous month pair carries the recorded values.
	if series[8].Value != 900 || series[9].Value != 120 {
		t.Errorf("previous month = %v/%v, want 900/120", series[8].Value, series[9].Value)
	}
}

func TestBuildTrendSeriesIgnoresOutsideWindow(t *testing.T) {
	txs := []domain.Transaction{
		tx(domain.TypeExpense, 999, "Old", testNow.AddDate(0, -7, 0)),
		tx(domain.TypeExpense, 999, "Future", testNow.AddDate(0, 2, 0)),
		tx(domain.TypeExpense, 999, "Dateless", time.Time{}),
	}

	series := BuildTrendSeries(txs, testNow)
	for _, p := range series {
		if p.Value != 0 {
			t.Fatalf("point %+v has non-zero value from out-of-window transaction", p)
		}
	}
}

func TestBuildTrendSeriesYearBoundary(t *testing.T) {
	// A transaction from the same-named month one year earlier must not
	// land in the window bucket.
	jan := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		tx(domain.TypeExpense, 50, "Rent", jan),
		tx(domain.TypeExpense, 70, "Rent", jan.AddDate(-1, 0, 0)),
	}

	series := BuildTrendSeries(txs, jan)
	last := series[len(series)-1]
	if last.Value != 50 {
		t.Errorf("current month expense = %v, want 50 (previous year's January excluded)", last.Value)
	}
}

func TestComputeSpendingTrend(t *testing.T) {
	oneBack := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		txs           []domain.Transaction
		wantNil       bool
		wantPct       float64
		wantDirection domain.TrendDirection
	}{
		{
			name: "spending up",
			txs: []domain.Transaction{
				tx(domain.TypeExpense, 100, "A", oneBack),
				tx(domain.TypeExpense, 150, "A", testNow),
			},
			wantPct:       50,
			wantDirection: domain.TrendUp,
		},
		{
			name: "spending down",
			txs: []domain.Transaction{
				tx(domain.TypeExpense, 200, "A", oneBack),
				tx(domain.TypeExpense, 150, "A", testNow),
			},
			wantPct:       25,
			wantDirection: domain.TrendDown,
		},
		{
			name: "no prior month",
			txs: []domain.Transaction{
				tx(domain.TypeExpense, 150, "A", testNow),
			},
			wantNil: true,
		},
		{
			name: "no current month",
			txs: []domain.Transaction{
				tx(domain.TypeExpense, 150, "A", oneBack),
			},
			wantNil: true,
		},
		{
			name:    "no data at all",
			txs:     nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := ComputeSpendingTrend(tt.txs, testNow)
			if tt.wantNil {
				if trend != nil {
					t.Fatalf("trend = %+v, want nil", trend)
				}
				return
			}
			if trend == nil {
				t.Fatal("trend = nil, want value")
			}
			if trend.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", trend.Percentage, tt.wantPct)
			}
			if trend.Direction != tt.wantDirection {
				t.Errorf("Direction = %v, want %v", trend.Direction, tt.wantDirection)
			}
		})
	}
}

func TestComputeSpendingTrendMonthEnd(t *testing.T) {
	// From the 31st the "previous month" must be the actual previous
	// calendar month, not a normalization artifact.
	endOfMarch := time.Date(2024, time.March, 31, 8, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		tx(domain.TypeExpense, 100, "A", time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)),
		tx(domain.TypeExpense, 150, "A", endOfMarch),
	}

	trend := ComputeSpendingTrend(txs, endOfMarch)
	if trend == nil {
		t.Fatal("trend = nil, want value")
	}
	if trend.Percentage != 50 || trend.Direction != domain.TrendUp {
		t.Errorf("trend = %+v, want 50%% up", trend)
	}
}
