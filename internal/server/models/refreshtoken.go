package models

import "time"

// RefreshToken records an issued refresh token by its JWT ID so it can be
// rotated (and thereby revoked) exactly once.
type RefreshToken struct {
	JTI       string    `db:"jti"`
	UserID    int64     `db:"user_id"`
	Expires   time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
