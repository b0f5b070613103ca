// Package meetings caches public meeting-directory results per spatial
// region. Cached rows are plaintext and never synced.
package meetings

import (
	"context"
	"time"

	"github.com/ebergstrom/daybreak/internal/client/models"
)

// Repository is the meeting-cache storage contract.
type Repository interface {
	GetRegion(ctx context.Context, region string) ([]models.CachedMeeting, time.Time, error)
	ReplaceRegion(ctx context.Context, region string, items []models.CachedMeeting) error
	PruneStale(ctx context.Context, cutoff time.Time) (int64, error)
}
