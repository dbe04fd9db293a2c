package dbx

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const todoSchema = `
CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE);
CREATE TABLE todos (
	id        INTEGER PRIMARY KEY,
	user_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title     TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE
);`

func openTodoDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(todoSchema)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, email) VALUES (1, 'ann@example.com')`)
	require.NoError(t, err)
	return db
}

func todoCount(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM todos`))
	return n
}

func TestWithTx_CreateAndToggleCommit(t *testing.T) {
	db := openTodoDB(t)
	ctx := context.Background()

	var id int64
	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		row := tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO todos (user_id, title) VALUES (?, ?) RETURNING id`), 1, "milk")
		if err := row.Scan(&id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE todos SET completed = NOT completed WHERE id = ?`), id)
		return err
	})
	require.NoError(t, err)

	var completed bool
	require.NoError(t, db.Get(&completed, `SELECT completed FROM todos WHERE id = ?`, id))
	assert.True(t, completed, "both statements are committed together")
}

func TestWithTx_RollsBackWhenLaterStepFails(t *testing.T) {
	db := openTodoDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO todos (user_id, title) VALUES (1, 'first')`); err != nil {
			return err
		}
		// unknown owner violates the foreign key
		_, err := tx.ExecContext(ctx, `INSERT INTO todos (user_id, title) VALUES (42, 'orphan')`)
		return err
	})
	require.Error(t, err)

	assert.Equal(t, 0, todoCount(t, db), "the first insert must be rolled back too")
}

func TestWithTx_UniqueViolationIsRecognisable(t *testing.T) {
	db := openTodoDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (email) VALUES ('ann@example.com')`)
		return err
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := openTodoDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		assert.Equal(t, 0, todoCount(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO todos (user_id, title) VALUES (1, 'panic')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := openTodoDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
	assert.False(t, called)
}

func TestWithTx_ReturnsCallbackError(t *testing.T) {
	db := openTodoDB(t)
	errStop := errors.New("todo not found")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		var titles []string
		if err := tx.SelectContext(ctx, &titles, `SELECT title FROM todos WHERE user_id = 1`); err != nil {
			return err
		}
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM todos`); err != nil {
			return err
		}
		assert.Empty(t, titles)
		assert.Zero(t, n)
		return errStop
	})
	assert.ErrorIs(t, err, errStop)
}
