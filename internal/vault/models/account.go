// Package models defines the records persisted by the vault.
package models

import "time"

// Account is a registered vault user.
type Account struct {
	// ID is a random UUID; secrets are filed under it.
	ID string

	// Username as entered at registration. Uniqueness is case-insensitive.
	Username string

	// Email is stored lowercased.
	Email string

	// PasswordHash is "salt$hash", or a bare legacy hash.
	PasswordHash string

	TwoFactorEnabled bool

	CreatedAt time.Time

	// LastLogin is nil until the first successful login.
	LastLogin *time.Time
}
