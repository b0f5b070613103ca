package meetings

import (
	"context"
	"fmt"
	"time"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetRegion returns all cached meetings for a region and the oldest cache
// time among them, which callers compare against the TTL. An empty region
// returns a zero time.
func (r *SQLiteRepository) GetRegion(ctx context.Context, region string) ([]models.CachedMeeting, time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cache_region, name, day, time, address, lat, lng, cached_at
		 FROM cached_meetings WHERE cache_region = ? ORDER BY name`, region)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to select cached meetings: %w", err)
	}
	defer rows.Close()

	var result []models.CachedMeeting
	var oldest time.Time
	for rows.Next() {
		var m models.CachedMeeting
		var cachedAt int64
		if err := rows.Scan(&m.ID, &m.CacheRegion, &m.Name, &m.Day, &m.Time, &m.Address, &m.Lat, &m.Lng, &cachedAt); err != nil {
			return nil, time.Time{}, err
		}
		m.CachedAt = time.Unix(cachedAt, 0)
		if oldest.IsZero() || m.CachedAt.Before(oldest) {
			oldest = m.CachedAt
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}
	return result, oldest, nil
}

// ReplaceRegion atomically swaps a region's cached rows for fresh ones.
// Callers run it inside a transaction when the DBTX is transactional.
func (r *SQLiteRepository) ReplaceRegion(ctx context.Context, region string, items []models.CachedMeeting) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM cached_meetings WHERE cache_region = ?`, region); err != nil {
		return fmt.Errorf("failed to clear cache region: %w", err)
	}

	for _, m := range items {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO cached_meetings (id, cache_region, name, day, time, address, lat, lng, cached_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, region, m.Name, m.Day, m.Time, m.Address, m.Lat, m.Lng, m.CachedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert cached meeting: %w", err)
		}
	}
	return nil
}

// PruneStale drops every cached row older than cutoff, across all regions.
func (r *SQLiteRepository) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cached_meetings WHERE cached_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}
