// Package services contains the application services of the vault: account
// registration and login (CredentialVault) and encrypted site secrets
// (SecretBox).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/dbx"
	"github.com/dmitrijs2005/genpass/internal/logging"
	"github.com/dmitrijs2005/genpass/internal/vault/models"
	"github.com/dmitrijs2005/genpass/internal/vault/repositories/accounts"
	"github.com/google/uuid"
)

// CredentialVault manages accounts and password authentication.
//
// Contract:
//   - Register: validate, hash and store a new account with 2FA off.
//   - HashPassword / VerifyPassword: the peppered, salted hash scheme.
//   - Login: verify credentials and stamp LastLogin. Unknown users and bad
//     passwords fail identically with common.ErrInvalidCredentials.
//   - Enable2FA / Disable2FA: idempotent flag flips; common.ErrUserNotFound
//     for unknown users.
//   - Is2FAEnabled / GetUserEmail / GetAccount: lookups.
//
// Storage failures are reported as common.ErrStorage.
type CredentialVault interface {
	Register(ctx context.Context, username string, password []byte, email string) error
	HashPassword(password []byte) (string, error)
	VerifyPassword(password []byte, stored string) bool
	Login(ctx context.Context, username string, password []byte) (*models.Account, error)
	Enable2FA(ctx context.Context, username string) error
	Disable2FA(ctx context.Context, username string) error
	Is2FAEnabled(ctx context.Context, username string) (bool, error)
	GetUserEmail(ctx context.Context, username string) (string, bool, error)
	GetAccount(ctx context.Context, username string) (*models.Account, error)
}

type credentialVault struct {
	db     *sql.DB
	hasher *PasswordHasher
	log    logging.Logger
	nowF   func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialVault constructs a CredentialVault over db.
func NewCredentialVault(db *sql.DB, hasher *PasswordHasher, log logging.Logger) CredentialVault {
	return &credentialVault{db: db, hasher: hasher, log: log, nowF: time.Now}
}

func (v *credentialVault) repo(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLiteRepository(db)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}

func (v *credentialVault) Register(ctx context.Context, username string, password []byte, email string) error {
	if !common.ValidUsername(username) {
		return common.ErrInvalidUsername
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !common.ValidEmail(email) {
		return common.ErrInvalidEmail
	}
	if len(password) == 0 {
		return fmt.Errorf("%w: password is empty", common.ErrInvalidArgument)
	}

	hash, err := v.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	acc := &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    v.nowF().UTC(),
	}

	err = dbx.WithTx(ctx, v.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := v.repo(tx)

		existing, err := repo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return common.ErrDuplicateUsername
		}
		return repo.Create(ctx, acc)
	})
	if errors.Is(err, common.ErrDuplicateUsername) {
		return err
	}
	if err != nil {
		return storageErr("register", err)
	}

	v.log.Info(ctx, "account registered", "username", username)
	return nil
}

func (v *credentialVault) HashPassword(password []byte) (string, error) {
	return v.hasher.Hash(password)
}

func (v *credentialVault) VerifyPassword(password []byte, stored string) bool {
	return v.hasher.Verify(password, stored)
}

// burnVerify runs one verification against a dummy hash, matching the work
// done for an existing account.
func (v *credentialVault) burnVerify(password []byte) {
	v.dummyOnce.Do(func() {
		v.dummyHash, _ = v.hasher.Hash([]byte("genpass-dummy-password"))
	})
	v.hasher.Verify(password, v.dummyHash)
}

func (v *credentialVault) Login(ctx context.Context, username string, password []byte) (*models.Account, error) {
	if !common.ValidUsername(username) {
		v.burnVerify(password)
		return nil, common.ErrInvalidCredentials
	}

	repo := v.repo(v.db)

	acc, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storageErr("login", err)
	}
	if acc == nil {
		v.burnVerify(password)
		v.log.Warn(ctx, "login failed", "username", username)
		return nil, common.ErrInvalidCredentials
	}
	if !v.hasher.Verify(password, acc.PasswordHash) {
		v.log.Warn(ctx, "login failed", "username", username)
		return nil, common.ErrInvalidCredentials
	}

	now := v.nowF().UTC()
	if err := repo.SetLastLogin(ctx, acc.ID, now); err != nil {
		return nil, storageErr("login", err)
	}
	acc.LastLogin = &now

	if v.hasher.NeedsRehash(acc.PasswordHash) {
		v.upgradeHash(ctx, repo, acc, password)
	}

	v.log.Info(ctx, "login succeeded", "username", acc.Username)
	return acc, nil
}

// upgradeHash replaces a legacy record with a salted one. Failure is logged
// and leaves the old record usable.
func (v *credentialVault) upgradeHash(ctx context.Context, repo accounts.Repository, acc *models.Account, password []byte) {
	hash, err := v.hasher.Hash(password)
	if err == nil {
		err = repo.SetPasswordHash(ctx, acc.ID, hash)
	}
	if err != nil {
		v.log.Warn(ctx, "password hash upgrade failed", "username", acc.Username, "error", err)
		return
	}
	acc.PasswordHash = hash
	v.log.Info(ctx, "password hash upgraded", "username", acc.Username)
}

func (v *credentialVault) setTwoFactor(ctx context.Context, username string, enabled bool) error {
	err := v.repo(v.db).SetTwoFactor(ctx, username, enabled)
	if errors.Is(err, common.ErrUserNotFound) {
		return err
	}
	if err != nil {
		return storageErr("update two factor", err)
	}

	v.log.Info(ctx, "two factor updated", "username", username, "enabled", enabled)
	return nil
}

func (v *credentialVault) Enable2FA(ctx context.Context, username string) error {
	return v.setTwoFactor(ctx, username, true)
}

func (v *credentialVault) Disable2FA(ctx context.Context, username string) error {
	return v.setTwoFactor(ctx, username, false)
}

// Is2FAEnabled is false for unknown users.
func (v *credentialVault) Is2FAEnabled(ctx context.Context, username string) (bool, error) {
	acc, err := v.repo(v.db).GetByUsername(ctx, username)
	if err != nil {
		return false, storageErr("get account", err)
	}
	return acc != nil && acc.TwoFactorEnabled, nil
}

func (v *credentialVault) GetUserEmail(ctx context.Context, username string) (string, bool, error) {
	acc, err := v.repo(v.db).GetByUsername(ctx, username)
	if err != nil {
		return "", false, storageErr("get account", err)
	}
	if acc == nil {
		return "", false, nil
	}
	return acc.Email, true, nil
}

func (v *credentialVault) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	acc, err := v.repo(v.db).GetByUsername(ctx, username)
	if err != nil {
		return nil, storageErr("get account", err)
	}
	if acc == nil {
		return nil, common.ErrUserNotFound
	}
	return acc, nil
}
