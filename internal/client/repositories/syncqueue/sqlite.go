package syncqueue

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

// Enqueue records that a sync is owed for (table, recordID). If an entry
// already exists, models.MergeOperations decides the survivor: a later
// operation supersedes rather than stacks, and insert+delete cancel out.
//
// For deletes, remoteID must carry the record's remote identifier captured
// while the row still exists; the queue executes after the local row is gone.
func (r *SQLiteRepository) Enqueue(ctx context.Context, table, recordID string, op models.Operation, remoteID *string) error {
	if !common.IsSyncableTable(table) {
		return fmt.Errorf("%w: table %q is not syncable", common.ErrValidation, table)
	}

	var existingID int64
	var existingOp models.Operation
	err := r.db.QueryRowContext(ctx,
		`SELECT id, operation FROM sync_queue WHERE table_name = ? AND record_id = ?`,
		table, recordID).Scan(&existingID, &existingOp)

	if errors.Is(err, sql.ErrNoRows) {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO sync_queue (table_name, record_id, operation, remote_id, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			table, recordID, op, remoteID, time.Now().Unix())
		if err != nil {
			return fmt.Errorf("failed to enqueue: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up queue entry: %w", err)
	}

	merged, keep := models.MergeOperations(existingOp, op)
	if !keep {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, existingID); err != nil {
			return fmt.Errorf("failed to cancel queue entry: %w", err)
		}
		return nil
	}

	// keep the original created_at so FIFO order reflects first intent
	_, err = r.db.ExecContext(ctx,
		`UPDATE sync_queue SET operation = ?, remote_id = ?, attempts = 0 WHERE id = ?`,
		merged, remoteID, existingID)
	if err != nil {
		return fmt.Errorf("failed to supersede queue entry: %w", err)
	}
	return nil
}

// All returns every outstanding entry in creation (FIFO) order.
func (r *SQLiteRepository) All(ctx context.Context) ([]models.SyncQueueEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, table_name, record_id, operation, remote_id, attempts, created_at
		 FROM sync_queue ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue entries: %w", err)
	}
	defer rows.Close()

	var result []models.SyncQueueEntry
	for rows.Next() {
		var e models.SyncQueueEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.TableName, &e.RecordID, &e.Operation, &e.RemoteID, &e.Attempts, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
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

func (r *SQLiteRepository) IncrementAttempts(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sync_queue SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}
	return nil
}
