package connections

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

const columns = `id, user_id, role, status, invite_code, display_name,
	own_public_key, peer_public_key, shared_key, nonce_shared_key,
	pending_private_key, nonce_pending_key, sync_status, remote_id,
	created_at, updated_at`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.SponsorConnection) error {
	query := `INSERT INTO sponsor_connections (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.Role, c.Status, c.InviteCode, c.DisplayName,
		c.OwnPublicKey, c.PeerPublicKey, c.SharedKey, c.NonceSharedKey,
		c.PendingPrivateKey, c.NoncePendingKey, c.SyncStatus, c.RemoteID,
		c.CreatedAt.Unix(), c.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert connection: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, userID string) ([]models.SponsorConnection, error) {
	query := `SELECT ` + columns + ` FROM sponsor_connections WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select connections: %w", err)
	}
	defer rows.Close()

	var result []models.SponsorConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.SponsorConnection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM sponsor_connections WHERE id = ?`, id)
	c, err := scanConnection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

// FindPendingByCode locates the pending sponsee-role row matching an invite
// code. Used by the confirm path; a connected or missing row is ErrNotFound.
func (r *SQLiteRepository) FindPendingByCode(ctx context.Context, userID, code string) (*models.SponsorConnection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM sponsor_connections
		 WHERE user_id = ? AND invite_code = ? AND status = ? AND role = ?`,
		userID, code, models.ConnectionPending, models.RoleSponsee)
	c, err := scanConnection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

// MarkConnected transitions a pending row to connected, setting the peer key
// and encrypted shared key and clearing the pending private key. The WHERE
// clause guards the one-way transition: confirming twice finds no pending row.
func (r *SQLiteRepository) MarkConnected(ctx context.Context, c *models.SponsorConnection) error {
	query := `UPDATE sponsor_connections
		SET status = ?, display_name = ?, peer_public_key = ?,
		    shared_key = ?, nonce_shared_key = ?,
		    pending_private_key = NULL, nonce_pending_key = NULL,
		    sync_status = ?, updated_at = ?
		WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query,
		models.ConnectionConnected, c.DisplayName, c.PeerPublicKey,
		c.SharedKey, c.NonceSharedKey,
		c.SyncStatus, c.UpdatedAt.Unix(),
		c.ID, models.ConnectionPending)
	if err != nil {
		return fmt.Errorf("failed to mark connection connected: %w", err)
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

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sponsor_connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*models.SponsorConnection, error) {
	c := &models.SponsorConnection{}
	var createdAt, updatedAt int64
	err := row.Scan(
		&c.ID, &c.UserID, &c.Role, &c.Status, &c.InviteCode, &c.DisplayName,
		&c.OwnPublicKey, &c.PeerPublicKey, &c.SharedKey, &c.NonceSharedKey,
		&c.PendingPrivateKey, &c.NoncePendingKey, &c.SyncStatus, &c.RemoteID,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return c, nil
}
