// Package cache holds reference data (account and category lists) that the
// consuming layer uses to pre-populate forms while fresh reads are in flight.
//
// The cache is an explicit, injected object owned by whoever composes the
// application; there is deliberately no package-level instance. Writers must
// call Invalidate after mutating the backing collections, nothing here
// expires entries on its own.
package cache

import (
	"sync"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// Reference caches the last-fetched account and category lists. Safe for
// concurrent use. The zero value is not usable; call New.
type Reference struct {
	mu         sync.RWMutex
	accounts   []domain.Account
	categories []domain.Category
	valid      bool
}

// New creates an empty, invalid cache.
func New() *Reference {
	return &Reference{}
}

// Accounts returns the cached account list and whether the cache is valid.
// Callers treat an invalid result as "fetch from the store".
func (r *Reference) Accounts() ([]domain.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.valid {
		return nil, false
	}
	return append([]domain.Account(nil), r.accounts...), true
}

// Categories returns the cached category list and whether the cache is valid.
func (r *Reference) Categories() ([]domain.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.valid {
		return nil, false
	}
	return append([]domain.Category(nil), r.categories...), true
}

// Put replaces both cached lists and marks the cache valid.
func (r *Reference) Put(accounts []domain.Account, categories []domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = append([]domain.Account(nil), accounts...)
	r.categories = append([]domain.Category(nil), categories...)
	r.valid = true
}

// Invalidate empties the cache. The next read reports invalid until Put runs
// again. Callers invoke this on every write to the backing collections.
func (r *Reference) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = nil
	r.categories = nil
	r.valid = false
}
