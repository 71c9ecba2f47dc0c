package export

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// SnapshotRow is the flattened form of one snapshot in the
// finance.dashboard_snapshots table. Only scalar aggregates go to BigQuery;
// the full nested snapshot belongs in the GCS archive.
type SnapshotRow struct {
	SnapshotID string    `bigquery:"snapshot_id"`
	UserID     string    `bigquery:"user_id"`
	ComputedTS time.Time `bigquery:"computed_ts"`

	Balance float64 `bigquery:"balance"`
	Income  float64 `bigquery:"income"`
	Expense float64 `bigquery:"expense"`
	NetFlow float64 `bigquery:"net_flow"`

	TopCategory      bigquery.NullString  `bigquery:"top_category"`
	TopCategoryShare bigquery.NullFloat64 `bigquery:"top_category_share"`
	AntCount         int                  `bigquery:"ant_count"`
	AntTotal         float64              `bigquery:"ant_total"`

	TotalSubscribers int `bigquery:"total_subscribers"`
	TotalDebtors     int `bigquery:"total_debtors"`
}

// BigQuerySink streams snapshot summary rows into BigQuery.
type BigQuerySink struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewBigQuerySink creates a sink writing to projectID's dataset.table.
func NewBigQuerySink(ctx context.Context, projectID, dataset, table string) (*BigQuerySink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQuerySink: bigquery client: %w", err)
	}
	return &BigQuerySink{client: client, dataset: dataset, table: table}, nil
}

// Close releases the underlying client.
func (s *BigQuerySink) Close() error {
	return s.client.Close()
}

// Export implements Sink.
func (s *BigQuerySink) Export(ctx context.Context, userID string, snap *domain.DashboardSnapshot) error {
	row := flattenSnapshot(userID, snap, time.Now())
	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("BigQuerySink.Export: inserting row: %w", err)
	}
	return nil
}

func flattenSnapshot(userID string, snap *domain.DashboardSnapshot, now time.Time) *SnapshotRow {
	row := &SnapshotRow{
		SnapshotID:       uuid.NewString(),
		UserID:           userID,
		ComputedTS:       now,
		Balance:          snap.Balance,
		Income:           snap.Income,
		Expense:          snap.Expense,
		NetFlow:          snap.NetFlow,
		AntCount:         snap.AntExpenses.Count,
		AntTotal:         snap.AntExpenses.Total,
		TotalSubscribers: snap.SubscriberStats.TotalSubscribers,
		TotalDebtors:     snap.SubscriberStats.TotalDebtors,
	}
	if snap.TopCategory != nil {
		row.TopCategory = bigquery.NullString{StringVal: snap.TopCategory.Name, Valid: true}
		row.TopCategoryShare = bigquery.NullFloat64{Float64: snap.TopCategory.Percentage, Valid: true}
	}
	return row
}

var _ Sink = (*BigQuerySink)(nil)
