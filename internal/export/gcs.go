package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// GCSArchive writes the full snapshot JSON to a bucket under
// snapshots/YYYY/MM/DD/<uuid>.json. It assumes Application Default
// Credentials are configured.
type GCSArchive struct {
	bucket string
}

// NewGCSArchive creates an archive sink for the given bucket.
func NewGCSArchive(bucket string) *GCSArchive {
	return &GCSArchive{bucket: bucket}
}

// Export implements Sink.
func (a *GCSArchive) Export(ctx context.Context, userID string, snap *domain.DashboardSnapshot) error {
	payload, err := json.Marshal(struct {
		UserID     string                    `json:"userId"`
		ComputedAt time.Time                 `json:"computedAt"`
		Snapshot   *domain.DashboardSnapshot `json:"snapshot"`
	}{UserID: userID, ComputedAt: time.Now(), Snapshot: snap})
	if err != nil {
		return fmt.Errorf("GCSArchive.Export: marshaling snapshot: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("GCSArchive.Export: creating storage client: %w", err)
	}
	defer client.Close()

	objectName := fmt.Sprintf("snapshots/%s/%s.json", time.Now().Format("2006/01/02"), uuid.NewString())

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return fmt.Errorf("GCSArchive.Export: writing object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("GCSArchive.Export: finalizing object %s: %w", objectName, err)
	}
	return nil
}

var _ Sink = (*GCSArchive)(nil)
