package repomanager

import (
	"context"
	"database/sql"

	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/server/repositories/chests"
	"github.com/melly/timerocket/internal/server/repositories/rocketfiles"
	"github.com/melly/timerocket/internal/server/repositories/rockets"
	"github.com/melly/timerocket/internal/server/repositories/sentchests"
	"github.com/melly/timerocket/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX so services can
// compose them on *sql.DB directly or inside a shared transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Rockets(db dbx.DBTX) rockets.Repository
	RocketFiles(db dbx.DBTX) rocketfiles.Repository
	Chests(db dbx.DBTX) chests.Repository
	SentChests(db dbx.DBTX) sentchests.Repository
}
