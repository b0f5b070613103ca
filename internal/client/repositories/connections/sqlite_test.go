package connections

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/common"
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
CREATE TABLE sponsor_connections (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  status TEXT NOT NULL,
  invite_code TEXT NOT NULL,
  display_name TEXT,
  own_public_key BLOB NOT NULL,
  peer_public_key BLOB,
  shared_key BLOB,
  nonce_shared_key BLOB,
  pending_private_key BLOB,
  nonce_pending_key BLOB,
  sync_status TEXT NOT NULL DEFAULT 'pending',
  remote_id TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func makePending(id, userID, code string) *models.SponsorConnection {
	now := time.Now().Truncate(time.Second)
	return &models.SponsorConnection{
		ID:                id,
		UserID:            userID,
		Role:              models.RoleSponsee,
		Status:            models.ConnectionPending,
		InviteCode:        code,
		OwnPublicKey:      []byte("pub"),
		PendingPrivateKey: []byte("enc-priv"),
		NoncePendingKey:   []byte("n1"),
		SyncStatus:        models.SyncPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestInsertAndFindPendingByCode(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, makePending("c1", "u1", "CODE1")))

	got, err := r.FindPendingByCode(ctx, "u1", "CODE1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, models.RoleSponsee, got.Role)
	assert.Equal(t, []byte("enc-priv"), got.PendingPrivateKey)

	_, err = r.FindPendingByCode(ctx, "u1", "NOPE")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// another user's code must not match
	_, err = r.FindPendingByCode(ctx, "u2", "CODE1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarkConnected_OneWayTransition(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, makePending("c1", "u1", "CODE1")))

	name := "Jordan"
	upd := &models.SponsorConnection{
		ID:             "c1",
		DisplayName:    &name,
		PeerPublicKey:  []byte("peer-pub"),
		SharedKey:      []byte("enc-secret"),
		NonceSharedKey: []byte("n2"),
		SyncStatus:     models.SyncPending,
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, r.MarkConnected(ctx, upd))

	got, err := r.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionConnected, got.Status)
	assert.Equal(t, []byte("peer-pub"), got.PeerPublicKey)
	assert.Equal(t, []byte("enc-secret"), got.SharedKey)
	assert.Nil(t, got.PendingPrivateKey)
	assert.Nil(t, got.NoncePendingKey)
	require.NotNil(t, got.DisplayName)
	assert.Equal(t, "Jordan", *got.DisplayName)

	// the row is no longer pending: a second confirm cannot find it
	_, err = r.FindPendingByCode(ctx, "u1", "CODE1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// and marking again fails the guarded transition
	assert.ErrorIs(t, r.MarkConnected(ctx, upd), common.ErrNotFound)
}

func TestMultiplePendingInvites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, makePending("c1", "u1", "CODE1")))
	require.NoError(t, r.Insert(ctx, makePending("c2", "u1", "CODE2")))

	got1, err := r.FindPendingByCode(ctx, "u1", "CODE1")
	require.NoError(t, err)
	got2, err := r.FindPendingByCode(ctx, "u1", "CODE2")
	require.NoError(t, err)
	assert.NotEqual(t, got1.ID, got2.ID)
}

func TestDeleteByID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, makePending("c1", "u1", "CODE1")))
	require.NoError(t, r.DeleteByID(ctx, "c1"))
	assert.ErrorIs(t, r.DeleteByID(ctx, "c1"), common.ErrNotFound)
}

func TestGetAll_ScopedToUser(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, makePending("c1", "u1", "CODE1")))
	require.NoError(t, r.Insert(ctx, makePending("c2", "u2", "CODE2")))

	all, err := r.GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "c1", all[0].ID)
}
