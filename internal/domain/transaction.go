package domain

import (
	"strings"
	"time"
)

// TransactionType discriminates the direction of a transaction. Amounts are
// stored non-negative; the sign lives here, never in the amount.
type TransactionType string

const (
	// TypeIncome marks money coming in.
	TypeIncome TransactionType = "income"
	// TypeExpense marks money going out.
	TypeExpense TransactionType = "expense"
)

// DefaultCategory is used when a transaction carries no category name.
const DefaultCategory = "Uncategorized"

// Transaction is one ledger entry as read from the store. The engine treats
// transactions as immutable snapshot data; it never writes them back.
type Transaction struct {
	ID     string          `json:"id" firestore:"-"`
	Amount float64         `json:"amount" firestore:"amount"`
	Type   TransactionType `json:"type" firestore:"type"`

	// Date is the transaction's own timestamp. The zero value means the
	// stored date was absent or unparseable; such records are skipped by
	// date-dependent aggregation but still count where no date is needed.
	Date time.Time `json:"date" firestore:"date"`

	Category  string `json:"categoryName" firestore:"categoryName"`
	AccountID string `json:"accountId" firestore:"accountId"`
}

// Account is one account reference entry, as shown in form dropdowns.
type Account struct {
	ID   string `json:"id" firestore:"-"`
	Name string `json:"name" firestore:"name"`
}

// Category is one category reference entry.
type Category struct {
	ID   string `json:"id" firestore:"-"`
	Name string `json:"name" firestore:"name"`
}

// CategoryOrDefault returns the category name, falling back to
// DefaultCategory when the field is empty or whitespace.
func (t Transaction) CategoryOrDefault() string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// HasValidDate reports whether the transaction carries a usable date.
func (t Transaction) HasValidDate() bool {
	return !t.Date.IsZero()
}
