package records

import (
	"context"
	"fmt"

	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID, tableName, recordID string, payload []byte) (string, error) {
	query := `
		INSERT INTO records (user_id, table_name, record_id, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, table_name, record_id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
		RETURNING id
	`
	var remoteID string
	err := r.db.QueryRowContext(ctx, query, userID, tableName, recordID, payload).Scan(&remoteID)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	return remoteID, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, remoteID string) error {
	query := `
		DELETE FROM records
		WHERE user_id = $1 AND id = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, remoteID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}
