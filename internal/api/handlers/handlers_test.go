package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shiro-Vs/EVA-sub001/internal/cache"
	"github.com/Shiro-Vs/EVA-sub001/internal/dashboard"
	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
	"github.com/Shiro-Vs/EVA-sub001/internal/store/inmemory"
	"github.com/Shiro-Vs/EVA-sub001/internal/tips"
)

var testNow = time.Date(2024, time.June, 18, 12, 0, 0, 0, time.UTC)

func newStartedEngine(t *testing.T) (*dashboard.Engine, *inmemory.Store) {
	t.Helper()
	st := inmemory.NewStore()
	engine := dashboard.New(st, zerolog.Nop(), dashboard.WithClock(func() time.Time { return testNow }))
	t.Cleanup(engine.Close)
	if err := engine.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return engine, st
}

func TestGetDashboard(t *testing.T) {
	engine, st := newStartedEngine(t)
	st.PushTransactions("user1", []domain.Transaction{
		{Type: domain.TypeIncome, Amount: 100, Date: testNow},
		{Type: domain.TypeExpense, Amount: 40, Category: "Food", Date: testNow},
	})

	h := NewDashboardHandler(engine, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Loading   bool                      `json:"loading"`
		Dashboard *domain.DashboardSnapshot `json:"dashboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Loading {
		t.Error("loading = true after first snapshot")
	}
	if body.Dashboard.NetFlow != 60 {
		t.Errorf("netFlow = %v, want 60", body.Dashboard.NetFlow)
	}
}

func TestGetTip(t *testing.T) {
	engine, st := newStartedEngine(t)
	st.PushTransactions("user1", []domain.Transaction{
		{Type: domain.TypeExpense, Amount: 40, Category: "Food", Date: testNow},
	})

	h := NewTipsHandler(engine, tips.Static{}, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.GetTip(rec, httptest.NewRequest(http.MethodGet, "/api/tips", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var tip tips.Tip
	if err := json.Unmarshal(rec.Body.Bytes(), &tip); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if tip.Text == "" {
		t.Error("tip text is empty")
	}
	if tip.IsAI {
		t.Error("static provider produced an AI-flagged tip")
	}
}

func TestGetTipWhileLoading(t *testing.T) {
	st := inmemory.NewStore()
	engine := dashboard.New(st, zerolog.Nop())
	t.Cleanup(engine.Close)
	// Never started: stays loading.

	h := NewTipsHandler(engine, tips.Static{}, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.GetTip(rec, httptest.NewRequest(http.MethodGet, "/api/tips", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 while loading", rec.Code)
	}
}

func TestGetReference(t *testing.T) {
	ref := cache.New()
	ref.Put([]domain.Account{{ID: "a1", Name: "Checking"}}, []domain.Category{{ID: "c1", Name: "Food"}})

	h := NewReferenceHandler(ref, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.GetReference(rec, httptest.NewRequest(http.MethodGet, "/api/reference", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Accounts   []domain.Account  `json:"accounts"`
		Categories []domain.Category `json:"categories"`
		Cached     bool              `json:"cached"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !body.Cached || len(body.Accounts) != 1 || len(body.Categories) != 1 {
		t.Errorf("body = %+v, want cached lists", body)
	}
}

func TestGetReferenceInvalidated(t *testing.T) {
	ref := cache.New()
	ref.Put([]domain.Account{{ID: "a1", Name: "Checking"}}, nil)
	ref.Invalidate()

	h := NewReferenceHandler(ref, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.GetReference(rec, httptest.NewRequest(http.MethodGet, "/api/reference", nil))

	var body struct {
		Cached bool `json:"cached"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Cached {
		t.Error("cached = true after Invalidate")
	}
}
