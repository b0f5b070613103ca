package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB)`)
	require.NoError(t, err)
	return db
}

func TestSetGetDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	got, err := r.Get(ctx, "salt")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, r.Set(ctx, "salt", []byte("abc")))
	got, err = r.Get(ctx, "salt")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	// upsert
	require.NoError(t, r.Set(ctx, "salt", []byte("def")))
	got, err = r.Get(ctx, "salt")
	require.NoError(t, err)
	assert.Equal(t, []byte("def"), got)

	require.NoError(t, r.Delete(ctx, "salt"))
	got, err = r.Get(ctx, "salt")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.Clear(ctx))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
}
