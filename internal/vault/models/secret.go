package models

import "time"

// SiteSecret is one encrypted site password owned by an account.
type SiteSecret struct {
	AccountID  string
	Site       string
	Ciphertext string
	UpdatedAt  time.Time
}

// SecretSummary is what listings expose: the site name, never the secret.
type SecretSummary struct {
	Site      string
	UpdatedAt time.Time
}
