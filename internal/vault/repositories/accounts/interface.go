// Package accounts persists vault accounts.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/genpass/internal/vault/models"
)

// Repository stores accounts. Username lookups are case-insensitive.
//
// Contract:
//   - Create returns common.ErrDuplicateUsername on a case-insensitive clash.
//   - GetByUsername returns (nil, nil) when no account matches.
//   - SetLastLogin, SetTwoFactor and SetPasswordHash return
//     common.ErrUserNotFound when nothing matched.
type Repository interface {
	Create(ctx context.Context, a *models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	SetTwoFactor(ctx context.Context, username string, enabled bool) error
	SetPasswordHash(ctx context.Context, id string, hash string) error
}
