// Package repomanager provides a concrete RepositoryManager for the SQL
// backends, wiring together repository constructors and database migrations
// (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/migrations"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
)

// SQLRepositoryManager vends SQL-backed repository implementations and
// exposes a schema migration hook for its driver.
type SQLRepositoryManager struct {
	driver string
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewSQLRepository(db)
}

// Todos returns a todos.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Todos(db dbx.DBTX) todos.Repository {
	return todos.NewSQLRepository(db)
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// RunMigrations applies the embedded migrations for the manager's driver.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, m.driver)
}

// NewSQLRepositoryManager constructs a RepositoryManager for driver, which
// must be one of the dbx driver names.
func NewSQLRepositoryManager(driver string) (RepositoryManager, error) {
	if _, _, err := migrations.Source(driver); err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{driver: driver}, nil
}
