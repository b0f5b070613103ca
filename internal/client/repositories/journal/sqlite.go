package journal

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

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.JournalEntry) error {
	query := `INSERT INTO journal_entries (id, payload, nonce, shared_with, sync_status, remote_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Payload, e.Nonce, e.SharedWith, e.SyncStatus, e.RemoteID,
		e.CreatedAt.Unix(), e.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, e *models.JournalEntry) error {
	query := `UPDATE journal_entries
		SET payload = ?, nonce = ?, shared_with = ?, sync_status = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.Payload, e.Nonce, e.SharedWith, e.SyncStatus, e.UpdatedAt.Unix(), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
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

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.JournalEntry, error) {
	query := `SELECT id, payload, nonce, shared_with, sync_status, remote_id, created_at, updated_at
		FROM journal_entries ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select journal entries: %w", err)
	}
	defer rows.Close()

	var result []models.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	query := `SELECT id, payload, nonce, shared_with, sync_status, remote_id, created_at, updated_at
		FROM journal_entries WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	e := &models.JournalEntry{}
	var createdAt, updatedAt int64
	err := row.Scan(&e.ID, &e.Payload, &e.Nonce, &e.SharedWith, &e.SyncStatus, &e.RemoteID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)
	return e, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
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

// DeleteBySharedWith removes every entry shared under the given connection
// and returns their ids so the caller can enqueue remote deletes.
func (r *SQLiteRepository) DeleteBySharedWith(ctx context.Context, connectionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM journal_entries WHERE shared_with = ?`, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select shared entries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM journal_entries WHERE shared_with = ?`, connectionID); err != nil {
		return nil, fmt.Errorf("failed to delete shared entries: %w", err)
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.JournalEntry, error) {
	e := &models.JournalEntry{}
	var createdAt, updatedAt int64
	if err := row.Scan(&e.ID, &e.Payload, &e.Nonce, &e.SharedWith, &e.SyncStatus, &e.RemoteID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)
	return e, nil
}
