package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

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

func checkTable(table string) error {
	if !common.IsSyncableTable(table) {
		return fmt.Errorf("%w: table %q is not syncable", common.ErrValidation, table)
	}
	return nil
}

// MarkSynced records the server-assigned id and flips the record to synced.
// A missing row is not an error: the record may have been locally deleted
// while its insert was still in flight.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, table, recordID, remoteID string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET sync_status = ?, remote_id = ? WHERE id = ?`, table)
	if _, err := r.db.ExecContext(ctx, query, models.SyncSynced, remoteID, recordID); err != nil {
		return fmt.Errorf("failed to mark %s/%s synced: %w", table, recordID, err)
	}
	return nil
}

// MarkFailed flips the record to failed after a sync error. Missing rows are
// ignored for the same reason as MarkSynced.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, table, recordID string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET sync_status = ? WHERE id = ?`, table)
	if _, err := r.db.ExecContext(ctx, query, models.SyncFailed, recordID); err != nil {
		return fmt.Errorf("failed to mark %s/%s failed: %w", table, recordID, err)
	}
	return nil
}

// RemoteID returns the record's server-assigned id, or nil when the record
// has never synced.
func (r *SQLiteRepository) RemoteID(ctx context.Context, table, recordID string) (*string, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	var remoteID *string
	query := fmt.Sprintf(`SELECT remote_id FROM %s WHERE id = ?`, table)
	err := r.db.QueryRowContext(ctx, query, recordID).Scan(&remoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read remote id: %w", err)
	}
	return remoteID, nil
}

// Payload reads the record back as the JSON document the backend upsert
// expects. Ciphertext columns are marshaled as base64 ([]byte JSON default).
// Secret columns of sponsor connections are deliberately absent: key
// material never leaves the device.
func (r *SQLiteRepository) Payload(ctx context.Context, table, recordID string) (json.RawMessage, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	var doc map[string]any
	var err error
	switch table {
	case common.TableJournalEntries:
		doc, err = r.journalPayload(ctx, recordID)
	case common.TableCheckIns:
		doc, err = r.checkInPayload(ctx, recordID)
	case common.TableFavorites:
		doc, err = r.favoritePayload(ctx, recordID)
	case common.TableSponsorConnections:
		doc, err = r.connectionPayload(ctx, recordID)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (r *SQLiteRepository) journalPayload(ctx context.Context, id string) (map[string]any, error) {
	var payload, nonce []byte
	var sharedWith *string
	var createdAt, updatedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, nonce, shared_with, created_at, updated_at FROM journal_entries WHERE id = ?`, id).
		Scan(&payload, &nonce, &sharedWith, &createdAt, &updatedAt)
	if err != nil {
		return nil, wrapPayloadErr(err)
	}
	return map[string]any{
		"id":          id,
		"payload":     payload,
		"nonce":       nonce,
		"shared_with": sharedWith,
		"created_at":  createdAt,
		"updated_at":  updatedAt,
	}, nil
}

func (r *SQLiteRepository) checkInPayload(ctx context.Context, id string) (map[string]any, error) {
	var payload, nonce []byte
	var checkedOn string
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT checked_on, payload, nonce, created_at FROM check_ins WHERE id = ?`, id).
		Scan(&checkedOn, &payload, &nonce, &createdAt)
	if err != nil {
		return nil, wrapPayloadErr(err)
	}
	return map[string]any{
		"id":         id,
		"checked_on": checkedOn,
		"payload":    payload,
		"nonce":      nonce,
		"created_at": createdAt,
	}, nil
}

func (r *SQLiteRepository) favoritePayload(ctx context.Context, id string) (map[string]any, error) {
	var payload, nonce []byte
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, nonce, created_at FROM favorites WHERE id = ?`, id).
		Scan(&payload, &nonce, &createdAt)
	if err != nil {
		return nil, wrapPayloadErr(err)
	}
	return map[string]any{
		"id":         id,
		"payload":    payload,
		"nonce":      nonce,
		"created_at": createdAt,
	}, nil
}

func (r *SQLiteRepository) connectionPayload(ctx context.Context, id string) (map[string]any, error) {
	var role, status, inviteCode string
	var displayName *string
	var ownPub, peerPub []byte
	var createdAt, updatedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT role, status, invite_code, display_name, own_public_key, peer_public_key, created_at, updated_at
		 FROM sponsor_connections WHERE id = ?`, id).
		Scan(&role, &status, &inviteCode, &displayName, &ownPub, &peerPub, &createdAt, &updatedAt)
	if err != nil {
		return nil, wrapPayloadErr(err)
	}
	return map[string]any{
		"id":              id,
		"role":            role,
		"status":          status,
		"invite_code":     inviteCode,
		"display_name":    displayName,
		"own_public_key":  ownPub,
		"peer_public_key": peerPub,
		"created_at":      createdAt,
		"updated_at":      updatedAt,
	}, nil
}

func wrapPayloadErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return fmt.Errorf("failed to read record payload: %w", err)
}
