package syncqueue

import (
	"context"
	"database/sql"
	"testing"

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
CREATE TABLE sync_queue (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  table_name TEXT NOT NULL,
  record_id TEXT NOT NULL,
  operation TEXT NOT NULL,
  remote_id TEXT,
  attempts INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  UNIQUE (table_name, record_id)
);
`)
	require.NoError(t, err)
	return db
}

func TestEnqueue_FIFO(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, common.TableJournalEntries, "a", models.OpInsert, nil))
	require.NoError(t, r.Enqueue(ctx, common.TableCheckIns, "b", models.OpInsert, nil))
	require.NoError(t, r.Enqueue(ctx, common.TableFavorites, "c", models.OpInsert, nil))

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].RecordID)
	assert.Equal(t, "b", all[1].RecordID)
	assert.Equal(t, "c", all[2].RecordID)
}

func TestEnqueue_RejectsUnknownTable(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	err := r.Enqueue(context.Background(), "users", "a", models.OpInsert, nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestEnqueue_InsertThenDeleteCancels(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, common.TableJournalEntries, "a", models.OpInsert, nil))
	require.NoError(t, r.Enqueue(ctx, common.TableJournalEntries, "a", models.OpDelete, nil))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEnqueue_UpdateThenDeleteCollapses(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	remoteID := "srv-1"
	require.NoError(t, r.Enqueue(ctx, common.TableJournalEntries, "a", models.OpUpdate, nil))
	require.NoError(t, r.Enqueue(ctx, common.TableJournalEntries, "a", models.OpDelete, &remoteID))

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.OpDelete, all[0].Operation)
	require.NotNil(t, all[0].RemoteID)
	assert.Equal(t, "srv-1", *all[0].RemoteID)
}

func TestEnqueue_InsertThenUpdateStaysInsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, common.TableJournalEntries, "a", models.OpInsert, nil))
	require.NoError(t, r.Enqueue(ctx, common.TableJournalEntries, "a", models.OpUpdate, nil))

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.OpInsert, all[0].Operation)
}

func TestDeleteAndAttempts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, common.TableJournalEntries, "a", models.OpInsert, nil))
	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, r.IncrementAttempts(ctx, all[0].ID))
	all, err = r.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, all[0].Attempts)

	require.NoError(t, r.Delete(ctx, all[0].ID))
	assert.ErrorIs(t, r.Delete(ctx, all[0].ID), common.ErrNotFound)
}
