// Package export streams composed dashboard snapshots to optional offline
// sinks. Sinks are fire-and-forget from the engine's point of view: a failed
// export is logged and dropped, it never touches the live snapshot.
package export

import (
	"context"

	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
)

// Sink receives each newly composed snapshot.
type Sink interface {
	// Export records one snapshot. userID identifies whose dashboard it
	// was computed for.
	Export(ctx context.Context, userID string, snap *domain.DashboardSnapshot) error
}
