package checkins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.CheckIn) error {
	query := `INSERT INTO check_ins (id, checked_on, payload, nonce, sync_status, remote_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.CheckedOn, c.Payload, c.Nonce, c.SyncStatus, c.RemoteID, c.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert check-in: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.CheckIn, error) {
	query := `SELECT id, checked_on, payload, nonce, sync_status, remote_id, created_at
		FROM check_ins ORDER BY checked_on DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select check-ins: %w", err)
	}
	defer rows.Close()

	var result []models.CheckIn
	for rows.Next() {
		var c models.CheckIn
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.CheckedOn, &c.Payload, &c.Nonce, &c.SyncStatus, &c.RemoteID, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByDate(ctx context.Context, date string) (*models.CheckIn, error) {
	query := `SELECT id, checked_on, payload, nonce, sync_status, remote_id, created_at
		FROM check_ins WHERE checked_on = ? ORDER BY created_at DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, date)

	c := &models.CheckIn{}
	var createdAt int64
	err := row.Scan(&c.ID, &c.CheckedOn, &c.Payload, &c.Nonce, &c.SyncStatus, &c.RemoteID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	c.CreatedAt = time.Unix(createdAt, 0)
	return c, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM check_ins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete check-in: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrNotFound
	}
	return nil
}
