package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

const selectUser = `SELECT id, email, username, password_hash, is_active FROM users`

// SQLRepository works on PostgreSQL and SQLite alike; queries are written
// with ? placeholders and rebound for the driver in use.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, username, password_hash, is_active)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		user.Email, user.UserName, user.PasswordHash, user.IsActive).Scan(&user.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConstraintViolation
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// column is always one of the literals above, never caller input.
func (r *SQLRepository) getBy(ctx context.Context, column string, value any) (*models.User, error) {
	query := selectUser + ` WHERE ` + column + ` = ?`

	user := &models.User{}
	err := r.db.GetContext(ctx, user, r.db.Rebind(query), value)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
