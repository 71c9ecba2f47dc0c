package domain

// DebtStatus is the settlement state of a subscriber debt.
type DebtStatus string

const (
	// DebtPending means the amount is still owed.
	DebtPending DebtStatus = "pending"
	// DebtPaid means the amount has been settled.
	DebtPaid DebtStatus = "paid"
)

// Service is a recurring subscription or bill. Icon and Color are carried
// through for display only; aggregation never reads them.
type Service struct {
	ID         string  `json:"id" firestore:"-"`
	Name       string  `json:"name" firestore:"name"`
	Cost       float64 `json:"cost" firestore:"cost"`
	BillingDay int     `json:"billingDay" firestore:"billingDay"`
	Shared     bool    `json:"shared" firestore:"shared"`
	Icon       string  `json:"icon,omitempty" firestore:"icon"`
	Color      string  `json:"color,omitempty" firestore:"color"`
}

// Subscriber is one person on a shared service. Name doubles as the
// human-readable identity used for debtor rollups.
type Subscriber struct {
	ID   string `json:"id" firestore:"-"`
	Name string `json:"name" firestore:"name"`
}

// Debt is one month's owed share for a subscriber under one service.
type Debt struct {
	ID     string     `json:"id" firestore:"-"`
	Amount float64    `json:"amount" firestore:"amount"`
	Month  string     `json:"month" firestore:"month"`
	Status DebtStatus `json:"status" firestore:"status"`
}
