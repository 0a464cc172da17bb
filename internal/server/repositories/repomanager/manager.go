package repomanager

import (
	"context"
	"database/sql"

	"github.com/boulin/eventverse/internal/dbx"
	"github.com/boulin/eventverse/internal/server/repositories/accounts"
	"github.com/boulin/eventverse/internal/server/repositories/events"
	"github.com/boulin/eventverse/internal/server/repositories/profiles"
	"github.com/boulin/eventverse/internal/server/repositories/refreshtokens"
)

// RepositoryManager vends repositories bound to a DBTX so services can run
// them either directly or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Events(db dbx.DBTX) events.Repository
}
