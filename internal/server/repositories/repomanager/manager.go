package repomanager

import (
	"context"
	"database/sql"

	"github.com/ebergstrom/daybreak/internal/dbx"
	"github.com/ebergstrom/daybreak/internal/server/repositories/records"
	"github.com/ebergstrom/daybreak/internal/server/repositories/refreshtokens"
	"github.com/ebergstrom/daybreak/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Records(db dbx.DBTX) records.Repository
}
