// Package firestore implements the store interfaces on Cloud Firestore.
//
// Layout: users/{uid}/transactions and users/{uid}/services hold the two
// feeds; shared-service debts live under the nested path
// users/{uid}/services/{sid}/subscribers/{subID}/debts.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Shiro-Vs/EVA-sub001/internal/analytics"
	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
	"github.com/Shiro-Vs/EVA-sub001/internal/store"
)

// Store reads a user's ledger and subscriptions from Firestore.
type Store struct {
	client *firestore.Client
	log    zerolog.Logger
}

// New creates a Store for the given project.
func New(ctx context.Context, projectID string, log zerolog.Logger) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.New: creating client: %w", err)
	}
	return &Store{client: client, log: log}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// SubscribeTransactions implements store.TransactionFeed. The watch is served
// from a goroutine; each Firestore snapshot is decoded in full and handed to
// fn. Watch errors are logged and end the watch without invoking fn again, so
// the consumer keeps whatever it derived from the last good snapshot.
func (s *Store) SubscribeTransactions(ctx context.Context, userID string, fn func([]domain.Transaction)) (store.Unsubscribe, error) {
	query := s.userCollection(userID, "transactions").OrderBy("date", firestore.Desc)
	watchCtx, cancel := context.WithCancel(ctx)
	snaps := query.Snapshots(watchCtx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.log.Error().Err(err).Str("user_id", userID).Msg("Transaction watch failed")
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				s.log.Error().Err(err).Str("user_id", userID).Msg("Reading transaction snapshot failed")
				continue
			}
			txs := make([]domain.Transaction, 0, len(docs))
			for _, doc := range docs {
				txs = append(txs, decodeTransaction(doc))
			}
			fn(txs)
		}
	}()

	return store.Unsubscribe(cancel), nil
}

// SubscribeServices implements store.ServiceFeed.
func (s *Store) SubscribeServices(ctx context.Context, userID string, fn func([]domain.Service)) (store.Unsubscribe, error) {
	query := s.userCollection(userID, "services").Query
	watchCtx, cancel := context.WithCancel(ctx)
	snaps := query.Snapshots(watchCtx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.log.Error().Err(err).Str("user_id", userID).Msg("Service watch failed")
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				s.log.Error().Err(err).Str("user_id", userID).Msg("Reading service snapshot failed")
				continue
			}
			services := make([]domain.Service, 0, len(docs))
			for _, doc := range docs {
				services = append(services, decodeService(doc))
			}
			fn(services)
		}
	}()

	return store.Unsubscribe(cancel), nil
}

// ListSubscribers implements store.DebtReader.
func (s *Store) ListSubscribers(ctx context.Context, userID, serviceID string) ([]domain.Subscriber, error) {
	iter := s.userCollection(userID, "services").Doc(serviceID).Collection("subscribers").Documents(ctx)
	defer iter.Stop()

	var subs []domain.Subscriber
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListSubscribers: iterating %s: %w", serviceID, err)
		}
		subs = append(subs, domain.Subscriber{
			ID:   doc.Ref.ID,
			Name: stringField(doc.Data(), "name"),
		})
	}
	return subs, nil
}

// ListPendingDebts implements store.DebtReader.
func (s *Store) ListPendingDebts(ctx context.Context, userID, serviceID, subscriberID string) ([]domain.Debt, error) {
	iter := s.userCollection(userID, "services").Doc(serviceID).
		Collection("subscribers").Doc(subscriberID).
		Collection("debts").Where("status", "==", string(domain.DebtPending)).
		Documents(ctx)
	defer iter.Stop()

	var debts []domain.Debt
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListPendingDebts: iterating %s/%s: %w", serviceID, subscriberID, err)
		}
		data := doc.Data()
		debts = append(debts, domain.Debt{
			ID:     doc.Ref.ID,
			Amount: numberField(data, "amount"),
			Month:  stringField(data, "month"),
			Status: domain.DebtStatus(stringField(data, "status")),
		})
	}
	return debts, nil
}

// ListAccounts implements store.ReferenceReader.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	iter := s.userCollection(userID, "accounts").Documents(ctx)
	defer iter.Stop()

	var accounts []domain.Account
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: iterating: %w", err)
		}
		accounts = append(accounts, domain.Account{
			ID:   doc.Ref.ID,
			Name: stringField(doc.Data(), "name"),
		})
	}
	return accounts, nil
}

// ListCategories implements store.ReferenceReader.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	iter := s.userCollection(userID, "categories").Documents(ctx)
	defer iter.Stop()

	var categories []domain.Category
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategories: iterating: %w", err)
		}
		categories = append(categories, domain.Category{
			ID:   doc.Ref.ID,
			Name: stringField(doc.Data(), "name"),
		})
	}
	return categories, nil
}

func (s *Store) userCollection(userID, name string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(userID).Collection(name)
}

// decodeTransaction reads a ledger document field by field. Historic writers
// stored dates as timestamps, ISO strings, or not at all, so the date goes
// through the tolerant coercion; a record with an unusable date is kept with
// a zero Date rather than rejected.
func decodeTransaction(doc *firestore.DocumentSnapshot) domain.Transaction {
	data := doc.Data()
	tx := domain.Transaction{
		ID:        doc.Ref.ID,
		Amount:    numberField(data, "amount"),
		Type:      domain.TransactionType(stringField(data, "type")),
		Category:  stringField(data, "categoryName"),
		AccountID: stringField(data, "accountId"),
	}
	if date, ok := analytics.CoerceDate(data["date"]); ok {
		tx.Date = date
	}
	return tx
}

func decodeService(doc *firestore.DocumentSnapshot) domain.Service {
	data := doc.Data()
	return domain.Service{
		ID:         doc.Ref.ID,
		Name:       stringField(data, "name"),
		Cost:       numberField(data, "cost"),
		BillingDay: int(numberField(data, "billingDay")),
		Shared:     boolField(data, "shared"),
		Icon:       stringField(data, "icon"),
		Color:      stringField(data, "color"),
	}
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func numberField(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func boolField(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

var _ store.Store = (*Store)(nil)
var _ store.ReferenceReader = (*Store)(nil)
