package meetings

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cached_meetings (
  id TEXT PRIMARY KEY,
  cache_region TEXT NOT NULL,
  name TEXT NOT NULL,
  day TEXT,
  time TEXT,
  address TEXT,
  lat REAL,
  lng REAL,
  cached_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func makeMeeting(id, region, name string, cachedAt time.Time) models.CachedMeeting {
	return models.CachedMeeting{
		ID:          id,
		CacheRegion: region,
		Name:        name,
		Day:         "Monday",
		Time:        "19:00",
		Address:     "123 Main St",
		Lat:         37.7749,
		Lng:         -122.4194,
		CachedAt:    cachedAt,
	}
}

func TestReplaceAndGetRegion(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)
	region := models.CacheRegionKey(37.7749, -122.4194, 25)

	items := []models.CachedMeeting{
		makeMeeting("m1", region, "Morning Group", now),
		makeMeeting("m2", region, "Evening Group", now),
	}
	require.NoError(t, r.ReplaceRegion(ctx, region, items))

	got, oldest, err := r.GetRegion(ctx, region)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, now.Unix(), oldest.Unix())

	// replacing swaps contents
	require.NoError(t, r.ReplaceRegion(ctx, region, items[:1]))
	got, _, err = r.GetRegion(ctx, region)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetRegion_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	got, oldest, err := r.GetRegion(context.Background(), "0.0000,0.0000,5")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, oldest.IsZero())
}

func TestPruneStale(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()
	region := "37.7749,-122.4194,25"

	require.NoError(t, r.ReplaceRegion(ctx, region, []models.CachedMeeting{
		makeMeeting("old", region, "Old", now.Add(-8*24*time.Hour)),
		makeMeeting("fresh", region, "Fresh", now),
	}))

	n, err := r.PruneStale(ctx, now.Add(-models.MeetingCacheTTL))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _, err := r.GetRegion(ctx, region)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}
