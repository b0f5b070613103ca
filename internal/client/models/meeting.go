package models

import (
	"fmt"
	"time"
)

// MeetingCacheTTL is how long a cached region stays fresh.
const MeetingCacheTTL = 7 * 24 * time.Hour

// CachedMeeting is public meeting-directory data cached per spatial region.
// Unlike user records it is stored in the clear and never synced.
type CachedMeeting struct {
	ID          string
	CacheRegion string
	Name        string
	Day         string
	Time        string
	Address     string
	Lat         float64
	Lng         float64
	CachedAt    time.Time
}

// CacheRegionKey buckets a search into a cache region: coordinates rounded
// to four decimals plus the radius in miles.
func CacheRegionKey(lat, lng float64, radiusMiles int) string {
	return fmt.Sprintf("%.4f,%.4f,%d", lat, lng, radiusMiles)
}

// RegionFresh reports whether data cached at cachedAt is still within the
// TTL as of now.
func RegionFresh(cachedAt, now time.Time) bool {
	return now.Sub(cachedAt) < MeetingCacheTTL
}
