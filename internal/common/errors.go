// Package common defines the sentinel errors shared by the vault components
// and small helpers for random material and memory wiping. Callers should use
// errors.Is (or errors.As for LockedError) to match these values.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Input validation errors.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidEmail    = errors.New("invalid email")

	// Account errors.
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Second factor errors.
	ErrRateLimited   = errors.New("code requested too soon")
	ErrAccountLocked = errors.New("account locked")

	// Infrastructure errors.
	ErrDecryption   = errors.New("decryption failed")
	ErrStorage      = errors.New("storage error")
	ErrNotification = errors.New("notification failed")
)

// LockedError reports a temporary lockout after repeated failed verifications.
// It matches ErrAccountLocked with errors.Is.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s until %s", ErrAccountLocked, e.Until.Format(time.DateTime))
}

func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}
