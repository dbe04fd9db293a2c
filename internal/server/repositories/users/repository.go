// Package users declares the credential store: the persistence contract for
// registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository stores users. Lookups return common.ErrorNotFound when there is
// no such user.
type Repository interface {
	// Create inserts user and fills in its ID. A duplicate email or username
	// yields common.ErrConstraintViolation.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
