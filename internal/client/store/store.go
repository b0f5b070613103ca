// Package store opens the local SQLite database, runs migrations, and wires
// the repository set handed to services.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ebergstrom/daybreak/internal/client/migrations"
	"github.com/ebergstrom/daybreak/internal/client/repositories/checkins"
	"github.com/ebergstrom/daybreak/internal/client/repositories/connections"
	"github.com/ebergstrom/daybreak/internal/client/repositories/favorites"
	"github.com/ebergstrom/daybreak/internal/client/repositories/journal"
	"github.com/ebergstrom/daybreak/internal/client/repositories/meetings"
	"github.com/ebergstrom/daybreak/internal/client/repositories/metadata"
	"github.com/ebergstrom/daybreak/internal/client/repositories/records"
	"github.com/ebergstrom/daybreak/internal/client/repositories/syncqueue"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Store bundles the open database handle and every repository bound to it.
type Store struct {
	DB          *sql.DB
	Metadata    metadata.Repository
	Journal     journal.Repository
	CheckIns    checkins.Repository
	Favorites   favorites.Repository
	Connections connections.Repository
	Meetings    meetings.Repository
	Queue       syncqueue.Repository
	Records     records.Repository
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the local database at dsn, migrates it,
// and returns the wired Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// single connection: SQLite is single-writer anyway, and :memory:
	// databases exist per connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		DB:          db,
		Metadata:    metadata.NewSQLiteRepository(db),
		Journal:     journal.NewSQLiteRepository(db),
		CheckIns:    checkins.NewSQLiteRepository(db),
		Favorites:   favorites.NewSQLiteRepository(db),
		Connections: connections.NewSQLiteRepository(db),
		Meetings:    meetings.NewSQLiteRepository(db),
		Queue:       syncqueue.NewSQLiteRepository(db),
		Records:     records.NewSQLiteRepository(db),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
