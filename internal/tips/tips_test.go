package tips

import (
	"context"
	"strings"
	"testing"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

func TestStaticNeverFails(t *testing.T) {
	snaps := []*domain.DashboardSnapshot{
		nil,
		{},
		{AntExpenses: domain.AntExpenses{Count: 8, Total: 42.5}},
		{SpendingTrend: &domain.SpendingTrend{Percentage: 35, Direction: domain.TrendUp}},
		{TopCategory: &domain.Insight{Name: "Food", Percentage: 60}},
		{NetFlow: -120},
	}

	for _, snap := range snaps {
		tip, err := Static{}.Generate(context.Background(), snap)
		if err != nil {
			t.Fatalf("Static.Generate(%+v) failed: %v", snap, err)
		}
		if tip.Text == "" {
			t.Errorf("Static.Generate(%+v) returned empty text", snap)
		}
		if tip.IsAI {
			t.Error("static tip claims to be AI-generated")
		}
	}
}

func TestStaticPicksAntExpenseRule(t *testing.T) {
	snap := &domain.DashboardSnapshot{
		AntExpenses: domain.AntExpenses{Count: 6, Total: 31},
		NetFlow:     -5,
	}
	tip, err := Static{}.Generate(context.Background(), snap)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(tip.Text, "6 small purchases") {
		t.Errorf("tip = %q, want the ant-expense rule to win", tip.Text)
	}
}

func TestStaticDeterministic(t *testing.T) {
	snap := &domain.DashboardSnapshot{NetFlow: -10}
	a, _ := Static{}.Generate(context.Background(), snap)
	b, _ := Static{}.Generate(context.Background(), snap)
	if a != b {
		t.Errorf("same snapshot produced different tips: %q vs %q", a.Text, b.Text)
	}
}

func TestBuildPromptIncludesAggregatesOnly(t *testing.T) {
	snap := &domain.DashboardSnapshot{
		Income:      1000,
		Expense:     400,
		NetFlow:     600,
		TopCategory: &domain.Insight{Name: "Transport", Percentage: 45},
		AntExpenses: domain.AntExpenses{Count: 3, Total: 12},
	}

	prompt := buildPrompt(snap)
	for _, want := range []string{"1000.00", "400.00", "Transport", "micro-expenses"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptSkipsAbsentInsights(t *testing.T) {
	prompt := buildPrompt(&domain.DashboardSnapshot{})
	if strings.Contains(prompt, "top spending category") {
		t.Error("prompt mentions a top category the snapshot does not have")
	}
	if strings.Contains(prompt, "spending vs last month") {
		t.Error("prompt mentions a trend the snapshot does not have")
	}
}

func TestCleanModelText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Skip one takeaway a week.", want: "Skip one takeaway a week."},
		{name: "fenced", input: "```\nSkip one takeaway a week.\n```", want: "Skip one takeaway a week."},
		{name: "fenced with language", input: "```text\nSkip it.\n```", want: "Skip it."},
		{name: "padded", input: "  advice  \n", want: "advice"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelText(tt.input); got != tt.want {
				t.Errorf("cleanModelText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
