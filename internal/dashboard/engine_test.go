package dashboard

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
	"github.com/Shiro-Vs/EVA-sub001/internal/store/inmemory"
)

var testNow = time.Date(2024, time.June, 18, 12, 0, 0, 0, time.UTC)

// failingDebtStore wraps the in-memory store and fails the nested debt reads
// on demand, simulating an unavailable backend mid-session.
type failingDebtStore struct {
	*inmemory.Store
	fail bool
}

func (f *failingDebtStore) ListSubscribers(ctx context.Context, userID, serviceID string) ([]domain.Subscriber, error) {
	if f.fail {
		return nil, errors.New("store unavailable")
	}
	return f.Store.ListSubscribers(ctx, userID, serviceID)
}

func newTestEngine(t *testing.T) (*Engine, *inmemory.Store) {
	t.Helper()
	st := inmemory.NewStore()
	e := New(st, zerolog.Nop(), WithClock(func() time.Time { return testNow }))
	t.Cleanup(e.Close)
	return e, st
}

func expense(amount float64, category string, date time.Time) domain.Transaction {
	return domain.Transaction{Type: domain.TypeExpense, Amount: amount, Category: category, Date: date}
}

func income(amount float64, date time.Time) domain.Transaction {
	return domain.Transaction{Type: domain.TypeIncome, Amount: amount, Date: date}
}

func TestEngineLoadingUntilFirstTransactionSnapshot(t *testing.T) {
	e, st := newTestEngine(t)

	if !e.Loading() {
		t.Fatal("engine not loading before Start")
	}

	// The in-memory feed fires synchronously on subscribe, so Start counts
	// as the first snapshot.
	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if e.Loading() {
		t.Error("still loading after first transaction snapshot")
	}

	_ = st
}

func TestEngineNoUserStaysLoading(t *testing.T) {
	e, st := newTestEngine(t)

	if err := e.Start(context.Background(), ""); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	st.PushTransactions("user1", []domain.Transaction{income(100, testNow)})

	if !e.Loading() {
		t.Error("engine left loading state with no authenticated user")
	}
	if snap := e.Snapshot(); snap.Income != 0 {
		t.Errorf("snapshot income = %v, want 0 (no subscriptions)", snap.Income)
	}
}

func TestEngineComposesTransactionHalf(t *testing.T) {
	e, st := newTestEngine(t)
	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	st.PushTransactions("user1", []domain.Transaction{
		expense(5, "catX", testNow),
		expense(20, "catY", testNow),
		income(100, testNow),
	})

	snap := e.Snapshot()
	if snap.Income != 100 || snap.Expense != 25 || snap.NetFlow != 75 {
		t.Errorf("snapshot = income %v / expense %v / net %v, want 100/25/75",
			snap.Income, snap.Expense, snap.NetFlow)
	}
	if snap.TopCategory == nil || snap.TopCategory.Name != "catY" {
		t.Errorf("TopCategory = %+v, want catY", snap.TopCategory)
	}
	if snap.AntExpenses.Count != 1 || snap.AntExpenses.Total != 5 {
		t.Errorf("AntExpenses = %+v, want {1 5}", snap.AntExpenses)
	}
	if len(snap.TrendSeries) != 12 {
		t.Errorf("TrendSeries has %d points, want 12", len(snap.TrendSeries))
	}
}

func TestEngineComposesServiceHalf(t *testing.T) {
	e, st := newTestEngine(t)

	st.SetSubscribers("svc1", []domain.Subscriber{{ID: "s1", Name: "Ana"}})
	st.SetDebts("svc1", "s1", []domain.Debt{
		{ID: "d1", Amount: 30, Month: "May", Status: domain.DebtPending},
		{ID: "d2", Amount: 20, Month: "June", Status: domain.DebtPending},
	})

	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	st.PushServices("user1", []domain.Service{
		{ID: "svc1", Name: "Netflix", Cost: 15, BillingDay: 15, Shared: true},
	})

	snap := e.Snapshot()
	if len(snap.UpcomingPayments) != 1 {
		t.Fatalf("UpcomingPayments has %d entries, want 1", len(snap.UpcomingPayments))
	}
	// billingDay 15 on June 18th rolls to July 15th.
	next := snap.UpcomingPayments[0].NextPaymentDate
	if next.Month != time.July || next.Day != 15 {
		t.Errorf("NextPaymentDate = %v, want July 15", next)
	}

	stats := snap.SubscriberStats
	if stats.TotalSubscribers != 1 || stats.TotalDebtors != 1 {
		t.Errorf("stats = %d/%d, want 1/1", stats.TotalSubscribers, stats.TotalDebtors)
	}
	if len(stats.TopDebtors) != 1 || stats.TopDebtors[0].Total != 50 {
		t.Errorf("TopDebtors = %+v, want Ana with 50", stats.TopDebtors)
	}
}

func TestEngineHalvesLandIndependently(t *testing.T) {
	e, st := newTestEngine(t)
	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	st.PushServices("user1", []domain.Service{{ID: "a", Name: "Gym", BillingDay: 25}})
	afterServices := e.Snapshot()
	if len(afterServices.UpcomingPayments) != 1 {
		t.Fatal("service half missing after service push")
	}

	st.PushTransactions("user1", []domain.Transaction{income(40, testNow)})
	afterTx := e.Snapshot()

	// Transaction update must not clobber the service-derived fields.
	if len(afterTx.UpcomingPayments) != 1 {
		t.Error("transaction update cleared service half")
	}
	if afterTx.Income != 40 {
		t.Errorf("Income = %v, want 40", afterTx.Income)
	}
}

func TestEngineSnapshotReplacedNotMutated(t *testing.T) {
	e, st := newTestEngine(t)
	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	st.PushTransactions("user1", []domain.Transaction{income(40, testNow)})
	first := e.Snapshot()

	st.PushTransactions("user1", []domain.Transaction{income(90, testNow)})
	second := e.Snapshot()

	if first == second {
		t.Fatal("snapshot pointer reused; snapshots must be replaced, not mutated")
	}
	if first.Income != 40 {
		t.Errorf("old snapshot mutated: Income = %v, want 40", first.Income)
	}
	if second.Income != 90 {
		t.Errorf("new snapshot Income = %v, want 90", second.Income)
	}
}

func TestEngineRecomputeIsIdempotent(t *testing.T) {
	e, st := newTestEngine(t)

	st.SetSubscribers("svc1", []domain.Subscriber{{ID: "s1", Name: "Ana"}})
	st.SetDebts("svc1", "s1", []domain.Debt{{ID: "d1", Amount: 30, Month: "May", Status: domain.DebtPending}})

	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	txs := []domain.Transaction{
		income(100, testNow),
		expense(30, "Food", testNow),
		expense(5, "Coffee", testNow.AddDate(0, -1, 0)),
	}
	services := []domain.Service{{ID: "svc1", Name: "Netflix", BillingDay: 3, Shared: true}}

	st.PushTransactions("user1", txs)
	st.PushServices("user1", services)
	first := e.Snapshot()

	st.PushTransactions("user1", txs)
	st.PushServices("user1", services)
	second := e.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("recompute on identical input differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestEngineListenFanOut(t *testing.T) {
	e, st := newTestEngine(t)

	var got []*domain.DashboardSnapshot
	unsub := e.Listen(func(s *domain.DashboardSnapshot) { got = append(got, s) })

	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	st.PushTransactions("user1", []domain.Transaction{income(10, testNow)})

	if len(got) == 0 {
		t.Fatal("listener never fired")
	}
	last := got[len(got)-1]
	if last.Income != 10 {
		t.Errorf("listener saw income %v, want 10", last.Income)
	}

	unsub()
	n := len(got)
	st.PushTransactions("user1", []domain.Transaction{income(20, testNow)})
	if len(got) != n {
		t.Error("listener fired after unsubscribe")
	}
}

func TestEngineCloseStopsRecomputation(t *testing.T) {
	e, st := newTestEngine(t)
	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	st.PushTransactions("user1", []domain.Transaction{income(10, testNow)})
	before := e.Snapshot()

	e.Close()
	st.PushTransactions("user1", []domain.Transaction{income(999, testNow)})

	if after := e.Snapshot(); after != before {
		t.Error("snapshot changed after Close")
	}
}

func TestEngineDebtErrorKeepsPreviousStats(t *testing.T) {
	st := inmemory.NewStore()
	failing := &failingDebtStore{Store: st}
	e := New(failing, zerolog.Nop(), WithClock(func() time.Time { return testNow }))
	t.Cleanup(e.Close)

	st.SetSubscribers("svc1", []domain.Subscriber{{ID: "s1", Name: "Ana"}})
	st.SetDebts("svc1", "s1", []domain.Debt{{ID: "d1", Amount: 30, Month: "May", Status: domain.DebtPending}})

	if err := e.Start(context.Background(), "user1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	services := []domain.Service{{ID: "svc1", Name: "Netflix", BillingDay: 3, Shared: true}}

	st.PushServices("user1", services)
	if got := e.Snapshot().SubscriberStats.TotalDebtors; got != 1 {
		t.Fatalf("TotalDebtors = %d, want 1 before failure", got)
	}

	// Store goes down: the schedule still refreshes, the stats stay.
	failing.fail = true
	st.PushServices("user1", append(services, domain.Service{ID: "svc2", Name: "Gym", BillingDay: 9}))

	snap := e.Snapshot()
	if len(snap.UpcomingPayments) != 2 {
		t.Errorf("UpcomingPayments has %d entries, want 2", len(snap.UpcomingPayments))
	}
	if snap.SubscriberStats.TotalDebtors != 1 {
		t.Errorf("TotalDebtors = %d, want 1 (previous stats retained)", snap.SubscriberStats.TotalDebtors)
	}
}
