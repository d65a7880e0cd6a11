// Package repomanager wires the PostgreSQL repositories together and runs
// schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/server/migrations"
	"github.com/melly/timerocket/internal/server/repositories/chests"
	"github.com/melly/timerocket/internal/server/repositories/rocketfiles"
	"github.com/melly/timerocket/internal/server/repositories/rockets"
	"github.com/melly/timerocket/internal/server/repositories/sentchests"
	"github.com/melly/timerocket/internal/server/repositories/users"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Rockets(db dbx.DBTX) rockets.Repository {
	return rockets.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RocketFiles(db dbx.DBTX) rocketfiles.Repository {
	return rocketfiles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Chests(db dbx.DBTX) chests.Repository {
	return chests.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SentChests(db dbx.DBTX) sentchests.Repository {
	return sentchests.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}
