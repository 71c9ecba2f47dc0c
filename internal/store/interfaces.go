// Package store defines the engine's view of the external document store.
// The engine never talks to a concrete backend directly; it consumes two
// ordered record feeds and one nested read path for shared-service debts.
package store

import (
	"context"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// Unsubscribe revokes a feed subscription. After it returns, the callback is
// never invoked again. Safe to call more than once.
type Unsubscribe func()

// TransactionFeed delivers full transaction snapshots for one user, ordered
// by date descending. Every change to the underlying collection re-fires the
// callback with the complete current record set, not a delta.
type TransactionFeed interface {
	SubscribeTransactions(ctx context.Context, userID string, fn func([]domain.Transaction)) (Unsubscribe, error)
}

// ServiceFeed delivers full service snapshots for one user. Ordering is
// unspecified.
type ServiceFeed interface {
	SubscribeServices(ctx context.Context, userID string, fn func([]domain.Service)) (Unsubscribe, error)
}

// DebtReader is the nested read path service → subscriber → debt used by the
// shared-subscription rollup.
type DebtReader interface {
	// ListSubscribers returns every subscriber of a shared service.
	ListSubscribers(ctx context.Context, userID, serviceID string) ([]domain.Subscriber, error)

	// ListPendingDebts returns the subscriber's debts still carrying
	// status "pending".
	ListPendingDebts(ctx context.Context, userID, serviceID, subscriberID string) ([]domain.Debt, error)
}

// ReferenceReader lists the account and category reference collections used
// to pre-populate forms. It is a one-shot read path, not a feed; callers
// cache the result and invalidate on their own writes.
type ReferenceReader interface {
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
}

// Store bundles everything the dashboard engine needs from a backend.
type Store interface {
	TransactionFeed
	ServiceFeed
	DebtReader
}
