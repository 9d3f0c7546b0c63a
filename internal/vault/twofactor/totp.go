// Package twofactor implements the second authentication factor: a TOTP
// authenticator with rate limiting and lockout, and a table of one-shot
// numeric challenges delivered out of band.
package twofactor

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/logging"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// CodeDigits is the width of every code issued by this package.
const CodeDigits = 6

// Options tunes an Authenticator. Zero fields take the DefaultOptions value.
type Options struct {
	Interval        time.Duration
	MinGap          time.Duration
	MaxAttempts     int
	LockoutDuration time.Duration
}

func DefaultOptions() Options {
	return Options{
		Interval:        5 * time.Minute,
		MinGap:          time.Minute,
		MaxAttempts:     3,
		LockoutDuration: 15 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Interval <= 0 {
		o.Interval = d.Interval
	}
	if o.MinGap <= 0 {
		o.MinGap = d.MinGap
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.LockoutDuration <= 0 {
		o.LockoutDuration = d.LockoutDuration
	}
	return o
}

// LockoutStore persists lockout deadlines so they outlive a session.
// lockouts.SQLiteRepository satisfies it.
type LockoutStore interface {
	Get(ctx context.Context, subject string) (time.Time, bool, error)
	Set(ctx context.Context, subject string, until time.Time) error
	Delete(ctx context.Context, subject string) error
}

// Authenticator holds the TOTP state of one session: the shared secret, the
// consecutive failure counter and the lockout deadline.
//
// Session states: idle, challenged (a code was generated), verified or
// locked. A locked session rejects every code, correct or not, until the
// deadline passes.
type Authenticator struct {
	mu sync.Mutex

	subject string
	secret  string
	url     string
	opts    Options
	store   LockoutStore
	log     logging.Logger
	nowF    func() time.Time

	lastIssued  time.Time
	attempts    int
	lockedUntil time.Time
	loaded      bool
}

// New creates an authenticator with a fresh random secret for account. store
// may be nil, in which case lockouts live only as long as the Authenticator.
func New(issuer, account string, opts Options, store LockoutStore, log logging.Logger) (*Authenticator, error) {
	opts = opts.withDefaults()

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(opts.Interval / time.Second),
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		SecretSize:  20,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	return &Authenticator{
		subject: strings.ToLower(account),
		secret:  key.Secret(),
		url:     key.URL(),
		opts:    opts,
		store:   store,
		log:     log,
		nowF:    time.Now,
	}, nil
}

// ProvisioningURL returns the otpauth:// URL for enrolling the secret in an
// authenticator app.
func (a *Authenticator) ProvisioningURL() string {
	return a.url
}

func (a *Authenticator) codeAt(t time.Time) (string, error) {
	return totp.GenerateCodeCustom(a.secret, t, totp.ValidateOpts{
		Period:    uint(a.opts.Interval / time.Second),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// GenerateCode returns the code for the current time step. Calls closer
// together than MinGap fail with common.ErrRateLimited.
func (a *Authenticator) GenerateCode(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowF()
	if !a.lastIssued.IsZero() {
		if wait := a.opts.MinGap - now.Sub(a.lastIssued); wait > 0 {
			a.log.Warn(ctx, "otp requested too soon", "subject", a.subject)
			return "", fmt.Errorf("%w: retry in %s", common.ErrRateLimited, wait.Round(time.Second))
		}
	}

	code, err := a.codeAt(now)
	if err != nil {
		return "", fmt.Errorf("generate totp code: %w", err)
	}
	a.lastIssued = now

	a.log.Debug(ctx, "otp generated", "subject", a.subject)
	return code, nil
}

// VerifyCode checks code against the current and the previous time step.
//
// A match resets the failure counter. A mismatch counts as a failure; the
// MaxAttempts-th consecutive failure locks the session for LockoutDuration
// and returns *common.LockedError. While locked every call returns
// *common.LockedError.
func (a *Authenticator) VerifyCode(ctx context.Context, code string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowF()
	if err := a.loadLockout(ctx); err != nil {
		return false, err
	}
	if now.Before(a.lockedUntil) {
		return false, &common.LockedError{Until: a.lockedUntil}
	}

	ok, err := a.matches(normalizeCode(code), now)
	if err != nil {
		return false, err
	}

	if ok {
		a.attempts = 0
		a.log.Info(ctx, "otp verified", "subject", a.subject)
		return true, a.clearLockout(ctx)
	}

	a.attempts++
	a.log.Warn(ctx, "otp mismatch", "subject", a.subject, "attempts", a.attempts)
	if a.attempts < a.opts.MaxAttempts {
		return false, nil
	}

	a.attempts = 0
	a.lockedUntil = now.Add(a.opts.LockoutDuration)
	a.log.Warn(ctx, "otp locked", "subject", a.subject, "until", a.lockedUntil)

	locked := &common.LockedError{Until: a.lockedUntil}
	if a.store != nil {
		if err := a.store.Set(ctx, a.subject, a.lockedUntil); err != nil {
			return false, errors.Join(locked, fmt.Errorf("%w: persist lockout: %w", common.ErrStorage, err))
		}
	}
	return false, locked
}

// CheckLocked returns *common.LockedError while a lockout, in memory or
// persisted, is in force.
func (a *Authenticator) CheckLocked(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.loadLockout(ctx); err != nil {
		return err
	}
	if a.nowF().Before(a.lockedUntil) {
		return &common.LockedError{Until: a.lockedUntil}
	}
	return nil
}

func (a *Authenticator) matches(code string, now time.Time) (bool, error) {
	if code == "" {
		return false, nil
	}
	for _, t := range []time.Time{now, now.Add(-a.opts.Interval)} {
		want, err := a.codeAt(t)
		if err != nil {
			return false, fmt.Errorf("generate totp code: %w", err)
		}
		if subtle.ConstantTimeCompare([]byte(code), []byte(want)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// loadLockout reads a persisted deadline on first use.
func (a *Authenticator) loadLockout(ctx context.Context) error {
	if a.loaded || a.store == nil {
		return nil
	}
	until, ok, err := a.store.Get(ctx, a.subject)
	if err != nil {
		return fmt.Errorf("%w: load lockout: %w", common.ErrStorage, err)
	}
	if ok && until.After(a.lockedUntil) {
		a.lockedUntil = until
	}
	a.loaded = true
	return nil
}

func (a *Authenticator) clearLockout(ctx context.Context) error {
	if a.lockedUntil.IsZero() {
		return nil
	}
	a.lockedUntil = time.Time{}
	if a.store == nil {
		return nil
	}
	if err := a.store.Delete(ctx, a.subject); err != nil {
		return fmt.Errorf("%w: clear lockout: %w", common.ErrStorage, err)
	}
	return nil
}

// normalizeCode trims code and left-pads it with zeros to CodeDigits.
// Anything that is not a short run of digits normalizes to "".
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > CodeDigits {
		return ""
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return strings.Repeat("0", CodeDigits-len(code)) + code
}
