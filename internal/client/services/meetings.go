package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/logging"
)

// Directory is the external meeting-directory lookup the cache sits in
// front of.
type Directory interface {
	Search(ctx context.Context, lat, lng float64, radiusMiles int) ([]models.CachedMeeting, error)
}

// MeetingService serves meeting searches from a region-keyed local cache
// with a 7-day TTL, falling back to the directory when the region is stale
// or unknown. Meeting data is public and stored in the clear.
type MeetingService interface {
	Find(ctx context.Context, lat, lng float64, radiusMiles int) ([]models.CachedMeeting, error)
	Prune(ctx context.Context) (int64, error)
}

type meetingService struct {
	store     *store.Store
	directory Directory
	log       logging.Logger
	now       func() time.Time
}

func NewMeetingService(st *store.Store, directory Directory, log logging.Logger) MeetingService {
	return &meetingService{store: st, directory: directory, log: log, now: time.Now}
}

// Find returns meetings for the search region. A fresh cached region is
// served as-is; otherwise the directory is queried and the region replaced.
// When the directory is unreachable but stale rows exist, the stale rows are
// served rather than nothing.
func (s *meetingService) Find(ctx context.Context, lat, lng float64, radiusMiles int) ([]models.CachedMeeting, error) {
	region := models.CacheRegionKey(lat, lng, radiusMiles)
	now := s.now()

	cached, oldest, err := s.store.Meetings.GetRegion(ctx, region)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 && models.RegionFresh(oldest, now) {
		return cached, nil
	}

	fetched, err := s.directory.Search(ctx, lat, lng, radiusMiles)
	if err != nil {
		if len(cached) > 0 {
			s.log.Warn(ctx, "meeting directory unreachable, serving stale cache",
				"region", region, "error", err)
			return cached, nil
		}
		return nil, err
	}

	for i := range fetched {
		if fetched[i].ID == "" {
			fetched[i].ID = uuid.NewString()
		}
		fetched[i].CacheRegion = region
		fetched[i].CachedAt = now
	}

	if err := s.store.Meetings.ReplaceRegion(ctx, region, fetched); err != nil {
		return nil, err
	}
	return fetched, nil
}

// Prune drops cached rows older than the TTL across all regions.
func (s *meetingService) Prune(ctx context.Context) (int64, error) {
	return s.store.Meetings.PruneStale(ctx, s.now().Add(-models.MeetingCacheTTL))
}
