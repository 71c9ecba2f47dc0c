// Package dashboard composes the aggregation outputs into one immutable
// snapshot and keeps it current against the store's record feeds.
package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shiro-Vs/EVA-sub001/internal/analytics"
	"github.com/Shiro-Vs/EVA-sub001/internal/debts"
	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
	"github.com/Shiro-Vs/EVA-sub001/internal/store"
)

// txDerived is the transaction-feed half of the snapshot.
type txDerived struct {
	balance       float64
	income        float64
	expense       float64
	netFlow       float64
	topCategory   *domain.Insight
	ant           domain.AntExpenses
	expensiveDay  *domain.Insight
	trendSeries   []domain.TrendPoint
	spendingTrend *domain.SpendingTrend
	breakdown     []domain.BreakdownEntry
}

// svcDerived is the service-feed half.
type svcDerived struct {
	upcoming []domain.UpcomingPayment
	stats    domain.SubscriberStats
}

// Engine owns the two feed subscriptions and the composed snapshot. Each feed
// firing triggers a full recomputation of that feed's half from the latest
// snapshot; the two halves land independently and possibly out of order, and
// the composed result is always the union of whichever half last completed.
//
// The published snapshot is the engine's only shared mutable resource. It is
// replaced through an atomic pointer and never mutated in place, so readers
// can never observe a partial update.
type Engine struct {
	store store.Store
	agg   *debts.Aggregator
	log   zerolog.Logger
	now   func() time.Time

	snap    atomic.Pointer[domain.DashboardSnapshot]
	loading atomic.Bool

	mu        sync.Mutex
	tx        txDerived
	svc       svcDerived
	listeners map[string]func(*domain.DashboardSnapshot)
	unsubTx   store.Unsubscribe
	unsubSvc  store.Unsubscribe
	cancel    context.CancelFunc
	closed    bool
	userID    string
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithClock fixes the engine's notion of "now". Tests use it to pin the
// current month.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithFanOut bounds the debt fan-out concurrency.
func WithFanOut(n int) Option {
	return func(e *Engine) { e.agg = debts.NewAggregator(e.store, n) }
}

// New creates an Engine over st. The engine starts in the loading state with
// an empty snapshot and stays there until Start processes the first
// transaction feed firing.
func New(st store.Store, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		agg:       debts.NewAggregator(st, debts.DefaultFanOut),
		log:       log,
		now:       time.Now,
		listeners: make(map[string]func(*domain.DashboardSnapshot)),
	}
	e.loading.Store(true)
	e.snap.Store(&domain.DashboardSnapshot{})
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start subscribes to both feeds for userID. An empty userID means no
// authenticated user: the engine performs no subscriptions and stays in the
// loading state indefinitely, which is a valid steady state rather than an
// error.
//
// A subscription setup failure is returned after tearing down whatever half
// was already wired.
func (e *Engine) Start(ctx context.Context, userID string) error {
	if userID == "" {
		e.log.Info().Msg("No authenticated user, dashboard stays empty")
		return nil
	}

	engineCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.userID = userID
	e.cancel = cancel
	e.mu.Unlock()

	unsubTx, err := e.store.SubscribeTransactions(engineCtx, userID, e.onTransactions)
	if err != nil {
		cancel()
		return err
	}

	unsubSvc, err := e.store.SubscribeServices(engineCtx, userID, func(services []domain.Service) {
		e.onServices(engineCtx, services)
	})
	if err != nil {
		unsubTx()
		cancel()
		return err
	}

	e.mu.Lock()
	e.unsubTx = unsubTx
	e.unsubSvc = unsubSvc
	e.mu.Unlock()
	return nil
}

// Close revokes both feed subscriptions and abandons any in-flight debt
// fan-out. Once Close has returned, no further recomputation is triggered and
// shared state is no longer mutated.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	unsubTx, unsubSvc, cancel := e.unsubTx, e.unsubSvc, e.cancel
	e.mu.Unlock()

	if unsubTx != nil {
		unsubTx()
	}
	if unsubSvc != nil {
		unsubSvc()
	}
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the latest composed snapshot. Never nil; before the first
// feed firing it is the empty snapshot.
func (e *Engine) Snapshot() *domain.DashboardSnapshot {
	return e.snap.Load()
}

// Loading reports whether the first transaction snapshot is still pending.
func (e *Engine) Loading() bool {
	return e.loading.Load()
}

// Listen registers fn to run with every newly composed snapshot. All
// consumers share the engine's single pair of feed subscriptions; fan-out
// happens here rather than through duplicate store listeners.
func (e *Engine) Listen(fn func(*domain.DashboardSnapshot)) store.Unsubscribe {
	id := uuid.NewString()
	e.mu.Lock()
	e.listeners[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// onTransactions recomputes the transaction half from a full feed snapshot.
func (e *Engine) onTransactions(txs []domain.Transaction) {
	now := e.now()
	totals := analytics.AggregatePeriod(txs, now)

	half := txDerived{
		balance:       totals.Balance,
		income:        totals.Income,
		expense:       totals.Expense,
		netFlow:       totals.NetFlow(),
		topCategory:   analytics.TopCategory(totals),
		ant:           totals.Ant,
		expensiveDay:  analytics.ExpensiveDay(totals),
		trendSeries:   analytics.BuildTrendSeries(txs, now),
		spendingTrend: analytics.ComputeSpendingTrend(txs, now),
		breakdown:     analytics.BuildBreakdown(totals),
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.tx = half
	e.loading.Store(false)
	snap, fns := e.publishLocked()
	e.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// onServices recomputes the service half. The payment schedule is pure; the
// debt rollup fans out to the store and fails closed, keeping the previous
// stats when any read errors out.
func (e *Engine) onServices(ctx context.Context, services []domain.Service) {
	now := e.now()
	upcoming := analytics.UpcomingPayments(services, now)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	userID := e.userID
	stats := e.svc.stats
	e.mu.Unlock()

	newStats, err := e.agg.Aggregate(ctx, userID, services)
	if err != nil {
		e.log.Error().Err(err).Msg("Debt aggregation failed, keeping previous stats")
	} else {
		stats = newStats
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.svc = svcDerived{upcoming: upcoming, stats: stats}
	snap, fns := e.publishLocked()
	e.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// publishLocked composes a fresh snapshot from both halves and swaps it in
// atomically. It returns the snapshot and the current listener set so the
// caller can fan out after releasing e.mu; listeners must not run under the
// lock or a re-entrant Listen would deadlock.
func (e *Engine) publishLocked() (*domain.DashboardSnapshot, []func(*domain.DashboardSnapshot)) {
	snap := &domain.DashboardSnapshot{
		Balance:           e.tx.balance,
		Income:            e.tx.income,
		Expense:           e.tx.expense,
		NetFlow:           e.tx.netFlow,
		TopCategory:       e.tx.topCategory,
		AntExpenses:       e.tx.ant,
		ExpensiveDay:      e.tx.expensiveDay,
		TrendSeries:       e.tx.trendSeries,
		SpendingTrend:     e.tx.spendingTrend,
		CategoryBreakdown: e.tx.breakdown,
		UpcomingPayments:  e.svc.upcoming,
		SubscriberStats:   e.svc.stats,
	}
	e.snap.Store(snap)

	fns := make([]func(*domain.DashboardSnapshot), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	return snap, fns
}
