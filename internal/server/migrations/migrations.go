// Package migrations embeds the goose schema migrations, one directory per
// SQL dialect, and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/pressly/goose/v3"
)

// Migrations holds postgres/*.sql and sqlite/*.sql.
//
//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Directories inside Migrations.
const (
	DirPostgres = "postgres"
	DirSQLite   = "sqlite"
)

// goose keeps its base FS and dialect in package globals.
var mu sync.Mutex

// Source maps a database/sql driver name to its goose dialect and migration
// directory.
func Source(driver string) (dialect, dir string, err error) {
	switch driver {
	case dbx.DriverPostgres:
		return "pgx", DirPostgres, nil
	case dbx.DriverSQLite:
		return "sqlite3", DirSQLite, nil
	}
	return "", "", fmt.Errorf("no migrations for driver %q", driver)
}

// Up applies every pending migration for driver.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	dialect, dir, err := Source(driver)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, dir)
}
