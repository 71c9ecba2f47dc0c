// Package inmemory implements the store interfaces over in-process data.
// It backs package tests and the one-shot CLI; nothing survives a restart.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
	"github.com/Shiro-Vs/EVA-sub001/internal/store"
)

// Store holds per-user transactions and services plus the nested
// service → subscriber → debt data, and re-fires feed callbacks whenever a
// Push mutates the corresponding collection. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	transactions map[string][]domain.Transaction // by userID
	services     map[string][]domain.Service     // by userID
	subscribers  map[string][]domain.Subscriber  // by serviceID
	debts        map[string][]domain.Debt        // by serviceID/subscriberID
	accounts     map[string][]domain.Account     // by userID
	categories   map[string][]domain.Category    // by userID

	txSubs  map[string]map[string]func([]domain.Transaction) // userID -> subID -> fn
	svcSubs map[string]map[string]func([]domain.Service)
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string][]domain.Transaction),
		services:     make(map[string][]domain.Service),
		subscribers:  make(map[string][]domain.Subscriber),
		debts:        make(map[string][]domain.Debt),
		accounts:     make(map[string][]domain.Account),
		categories:   make(map[string][]domain.Category),
		txSubs:       make(map[string]map[string]func([]domain.Transaction)),
		svcSubs:      make(map[string]map[string]func([]domain.Service)),
	}
}

// SubscribeTransactions implements store.TransactionFeed. The callback fires
// once immediately with the current snapshot, then again on every push.
func (s *Store) SubscribeTransactions(ctx context.Context, userID string, fn func([]domain.Transaction)) (store.Unsubscribe, error) {
	s.mu.Lock()
	if s.txSubs[userID] == nil {
		s.txSubs[userID] = make(map[string]func([]domain.Transaction))
	}
	id := uuid.NewString()
	s.txSubs[userID][id] = fn
	snapshot := s.transactionSnapshotLocked(userID)
	s.mu.Unlock()

	fn(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.txSubs[userID], id)
			s.mu.Unlock()
		})
	}, nil
}

// SubscribeServices implements store.ServiceFeed.
func (s *Store) SubscribeServices(ctx context.Context, userID string, fn func([]domain.Service)) (store.Unsubscribe, error) {
	s.mu.Lock()
	if s.svcSubs[userID] == nil {
		s.svcSubs[userID] = make(map[string]func([]domain.Service))
	}
	id := uuid.NewString()
	s.svcSubs[userID][id] = fn
	snapshot := append([]domain.Service(nil), s.services[userID]...)
	s.mu.Unlock()

	fn(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.svcSubs[userID], id)
			s.mu.Unlock()
		})
	}, nil
}

// ListSubscribers implements store.DebtReader.
func (s *Store) ListSubscribers(ctx context.Context, userID, serviceID string) ([]domain.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Subscriber(nil), s.subscribers[serviceID]...), nil
}

// ListPendingDebts implements store.DebtReader.
func (s *Store) ListPendingDebts(ctx context.Context, userID, serviceID, subscriberID string) ([]domain.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []domain.Debt
	for _, d := range s.debts[serviceID+"/"+subscriberID] {
		if d.Status == domain.DebtPending {
			pending = append(pending, d)
		}
	}
	return pending, nil
}

// PushTransactions replaces a user's transaction set and notifies feed
// subscribers with a date-descending snapshot.
func (s *Store) PushTransactions(userID string, txs []domain.Transaction) {
	s.mu.Lock()
	s.transactions[userID] = append([]domain.Transaction(nil), txs...)
	snapshot := s.transactionSnapshotLocked(userID)
	fns := make([]func([]domain.Transaction), 0, len(s.txSubs[userID]))
	for _, fn := range s.txSubs[userID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// PushServices replaces a user's service set and notifies feed subscribers.
func (s *Store) PushServices(userID string, services []domain.Service) {
	s.mu.Lock()
	s.services[userID] = append([]domain.Service(nil), services...)
	snapshot := append([]domain.Service(nil), services...)
	fns := make([]func([]domain.Service), 0, len(s.svcSubs[userID]))
	for _, fn := range s.svcSubs[userID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// ListAccounts implements store.ReferenceReader.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Account(nil), s.accounts[userID]...), nil
}

// ListCategories implements store.ReferenceReader.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories[userID]...), nil
}

// SetReference replaces a user's account and category reference lists.
func (s *Store) SetReference(userID string, accounts []domain.Account, categories []domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[userID] = append([]domain.Account(nil), accounts...)
	s.categories[userID] = append([]domain.Category(nil), categories...)
}

// SetSubscribers replaces the subscriber set of one service.
func (s *Store) SetSubscribers(serviceID string, subs []domain.Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[serviceID] = append([]domain.Subscriber(nil), subs...)
}

// SetDebts replaces one subscriber's debts under one service.
func (s *Store) SetDebts(serviceID, subscriberID string, debts []domain.Debt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts[serviceID+"/"+subscriberID] = append([]domain.Debt(nil), debts...)
}

// transactionSnapshotLocked copies and orders the feed the way the production
// store does: date descending, dateless records last.
func (s *Store) transactionSnapshotLocked(userID string) []domain.Transaction {
	snapshot := append([]domain.Transaction(nil), s.transactions[userID]...)
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Date.After(snapshot[j].Date)
	})
	return snapshot
}

var _ store.Store = (*Store)(nil)
var _ store.ReferenceReader = (*Store)(nil)
