// Package debts rolls pending shared-subscription debts up into per-person
// totals and rankings.
package debts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
	"github.com/Shiro-Vs/EVA-sub001/internal/store"
)

// maxTopDebtors caps the ranking at the five largest totals.
const maxTopDebtors = 5

// DefaultFanOut bounds how many subscriber reads run concurrently inside one
// recomputation, keeping a large shared service from flooding the store.
const DefaultFanOut = 8

// Aggregator walks shared services through the store's nested debt path and
// produces SubscriberStats. It holds no state between runs.
type Aggregator struct {
	reader store.DebtReader
	limit  int
}

// NewAggregator creates an Aggregator reading through reader. fanOut bounds
// concurrent subscriber fetches; values < 1 fall back to DefaultFanOut.
func NewAggregator(reader store.DebtReader, fanOut int) *Aggregator {
	if fanOut < 1 {
		fanOut = DefaultFanOut
	}
	return &Aggregator{reader: reader, limit: fanOut}
}

// subscriberDebts pairs one subscriber with their pending debts on one service.
type subscriberDebts struct {
	serviceName string
	serviceID   string
	subscriber  domain.Subscriber
	debts       []domain.Debt
}

// Aggregate fetches subscribers and pending debts for every shared service in
// the snapshot and reduces them to SubscriberStats. Fetches run in two
// bounded, concurrent phases (subscribers per service, then debts per
// subscriber) and are fully joined before any reduction happens.
//
// A store error fails the whole recomputation so the caller can keep its
// previous stats instead of publishing a half-counted rollup.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, services []domain.Service) (domain.SubscriberStats, error) {
	var (
		mu      sync.Mutex
		fetched []subscriberDebts
	)

	// Phase 1: subscriber sets per shared service.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for _, svc := range services {
		if !svc.Shared {
			continue
		}
		g.Go(func() error {
			subs, err := a.reader.ListSubscribers(gctx, userID, svc.ID)
			if err != nil {
				return fmt.Errorf("Aggregate: listing subscribers of %s: %w", svc.ID, err)
			}
			mu.Lock()
			for _, sub := range subs {
				fetched = append(fetched, subscriberDebts{serviceName: svc.Name, serviceID: svc.ID, subscriber: sub})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.SubscriberStats{}, err
	}

	// Phase 2: pending debts per subscriber.
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for i := range fetched {
		g.Go(func() error {
			sd := &fetched[i]
			pending, err := a.reader.ListPendingDebts(gctx, userID, sd.serviceID, sd.subscriber.ID)
			if err != nil {
				return fmt.Errorf("Aggregate: listing debts of %s/%s: %w", sd.serviceID, sd.subscriber.ID, err)
			}
			sd.debts = pending
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.SubscriberStats{}, err
	}

	return reduce(fetched), nil
}

// reduce folds the joined fetch results into stats.
//
// Identity is the subscriber's name, trimmed but case-sensitive: "Ana" and
// "ana" are counted as two people. That mirrors how upstream writers key
// these records; normalizing here would fragment or merge totals differently
// from the rest of the system.
func reduce(fetched []subscriberDebts) domain.SubscriberStats {
	// Deterministic reduction order regardless of fetch completion order.
	sort.SliceStable(fetched, func(i, j int) bool {
		if fetched[i].serviceName != fetched[j].serviceName {
			return fetched[i].serviceName < fetched[j].serviceName
		}
		return fetched[i].subscriber.Name < fetched[j].subscriber.Name
	})

	identities := make(map[string]struct{})
	debtors := make(map[string]*domain.DebtorSummary)

	for _, sd := range fetched {
		name := strings.TrimSpace(sd.subscriber.Name)
		if name == "" {
			continue
		}
		identities[name] = struct{}{}

		if len(sd.debts) == 0 {
			continue
		}
		summary, ok := debtors[name]
		if !ok {
			summary = &domain.DebtorSummary{Name: name}
			debtors[name] = summary
		}
		for _, d := range sd.debts {
			summary.Total += d.Amount
			summary.Breakdown = append(summary.Breakdown, domain.DebtItem{
				Service: sd.serviceName,
				Amount:  d.Amount,
				Month:   d.Month,
			})
		}
	}

	ranked := make([]domain.DebtorSummary, 0, len(debtors))
	for _, s := range debtors {
		ranked = append(ranked, *s)
	}
	// Descending by total; name ascending on ties for a stable order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].Name < ranked[j].Name
	})

	stats := domain.SubscriberStats{
		TotalSubscribers: len(identities),
		TotalDebtors:     len(ranked),
		TopDebtors:       ranked,
	}
	if len(stats.TopDebtors) > maxTopDebtors {
		stats.TopDebtors = stats.TopDebtors[:maxTopDebtors]
	}
	return stats
}
