// Package lockouts persists second-factor lockouts so that restarting the
// program does not lift them.
package lockouts

import (
	"context"
	"time"
)

// Repository maps a subject (a normalized username) to its lockout expiry.
type Repository interface {
	// Get returns the stored expiry and true, or zero time and false.
	Get(ctx context.Context, subject string) (time.Time, bool, error)
	Set(ctx context.Context, subject string, until time.Time) error
	Delete(ctx context.Context, subject string) error
	// PurgeExpired removes lockouts that ended at or before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
