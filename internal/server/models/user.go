// Package models defines server-side data models persisted in the database.
package models

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	UserName     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	IsActive     bool   `db:"is_active"`
}
