// Package todos declares the todo store. Every read and write is scoped to
// an owner: a todo belonging to someone else is indistinguishable from one
// that does not exist.
package todos

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type Repository interface {
	// Create inserts todo and fills in its ID.
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)

	// Find returns the todo with id if ownerID owns it, common.ErrorNotFound otherwise.
	Find(ctx context.Context, id, ownerID int64) (*models.Todo, error)

	// Update writes every mutable column of todo back.
	Update(ctx context.Context, todo *models.Todo) error

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id, ownerID int64) (bool, error)

	// Count counts ownerID's todos, optionally only those with the given
	// completion state.
	Count(ctx context.Context, ownerID int64, completed *bool) (int64, error)

	// List returns one page of ownerID's todos in the order q asks for.
	List(ctx context.Context, ownerID int64, q models.ListQuery) ([]*models.Todo, error)
}
