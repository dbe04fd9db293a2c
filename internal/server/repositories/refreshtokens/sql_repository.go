package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, token *models.RefreshToken) error {

	query :=
		`INSERT INTO refresh_tokens (jti, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		token.JTI, token.UserID, token.Expires, token.CreatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLRepository) Find(ctx context.Context, jti string) (*models.RefreshToken, error) {

	query :=
		`SELECT jti, user_id, expires_at, created_at FROM refresh_tokens
		 WHERE jti = ?`

	token := &models.RefreshToken{}
	err := r.db.GetContext(ctx, token, r.db.Rebind(query), jti)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *SQLRepository) Delete(ctx context.Context, jti string) error {

	query := `DELETE FROM refresh_tokens WHERE jti = ?`

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), jti); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
