// Package secrets persists encrypted per-site secrets. It never sees
// plaintext; encryption happens in the service layer.
package secrets

import (
	"context"

	"github.com/dmitrijs2005/genpass/internal/vault/models"
)

// Repository stores one ciphertext per (account, site).
//
// Contract:
//   - Upsert replaces an existing entry for the same site (last write wins).
//   - Get returns (nil, nil) when the site is absent.
//   - Delete of an absent site is not an error.
type Repository interface {
	Upsert(ctx context.Context, s *models.SiteSecret) error
	Get(ctx context.Context, accountID, site string) (*models.SiteSecret, error)
	List(ctx context.Context, accountID string) ([]models.SecretSummary, error)
	Delete(ctx context.Context, accountID, site string) error
}
