// Package refreshtokens declares the server-side repository contract for
// tracking issued refresh tokens by their JWT ID.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository defines operations for recording, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create records an issued refresh token.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a refresh token by its JWT ID and returns its metadata.
	// Returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, jti string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its JWT ID. Deleting a non-existent
	// token is not an error.
	Delete(ctx context.Context, jti string) error
}
