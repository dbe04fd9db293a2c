// Package dbtest hands tests a private, fully migrated in-memory SQLite
// database.
package dbtest

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/migrations"
	"github.com/jmoiron/sqlx"
)

// Open returns a fresh database that is closed when t finishes.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := dbx.Open(ctx, dbx.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(ctx, db.DB, dbx.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// InsertUser adds a bare user row and returns its id.
func InsertUser(t testing.TB, db *sqlx.DB, email, username string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowx(
		`INSERT INTO users (email, username, password_hash, is_active) VALUES (?, ?, 'x', 1) RETURNING id`,
		email, username).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}
