package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/cryptox"
	"github.com/dmitrijs2005/genpass/internal/logging"
	"github.com/dmitrijs2005/genpass/internal/vault/models"
	"github.com/dmitrijs2005/genpass/internal/vault/repositories/secrets"
)

// secretKeyInfo labels the HKDF subkey used for site secrets.
const secretKeyInfo = "genpass/site-secrets/v1"

// SecretBox encrypts site passwords and files them per account.
//
// Contract:
//   - Encrypt / Decrypt: authenticated encryption of a single string.
//     Decrypt fails with common.ErrDecryption on any tampering or key
//     mismatch.
//   - SaveSecret: upsert, last write wins.
//   - GetSecret: ("", false, nil) when absent; common.ErrDecryption when the
//     stored ciphertext cannot be opened.
//   - ListSecrets: site names only, nothing is decrypted.
//   - DeleteSecret: absent sites are a no-op.
type SecretBox interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
	SaveSecret(ctx context.Context, accountID, site, plaintext string) error
	GetSecret(ctx context.Context, accountID, site string) (string, bool, error)
	ListSecrets(ctx context.Context, accountID string) ([]models.SecretSummary, error)
	DeleteSecret(ctx context.Context, accountID, site string) error
}

type secretBox struct {
	repo secrets.Repository
	key  []byte
	log  logging.Logger
	nowF func() time.Time
}

// NewSecretBox derives the secret subkey from the installation key and binds
// the box to db.
func NewSecretBox(db *sql.DB, key []byte, log logging.Logger) (SecretBox, error) {
	if len(key) != cryptox.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", common.ErrInvalidArgument, cryptox.KeySize)
	}
	sub, err := cryptox.DeriveSubkey(key, secretKeyInfo)
	if err != nil {
		return nil, err
	}
	return &secretBox{repo: secrets.NewSQLiteRepository(db), key: sub, log: log, nowF: time.Now}, nil
}

// entryAAD binds a ciphertext to the row it was written for.
func entryAAD(accountID, site string) []byte {
	return []byte(accountID + "\x00" + site)
}

func normalizeSite(accountID, site string) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("%w: account id is empty", common.ErrInvalidArgument)
	}
	site = strings.TrimSpace(site)
	if site == "" {
		return "", fmt.Errorf("%w: site is empty", common.ErrInvalidArgument)
	}
	return site, nil
}

func (b *secretBox) Encrypt(plaintext string) (string, error) {
	return cryptox.Seal(b.key, []byte(plaintext), nil)
}

func (b *secretBox) Decrypt(token string) (string, error) {
	plaintext, err := cryptox.Open(b.key, token, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (b *secretBox) SaveSecret(ctx context.Context, accountID, site, plaintext string) error {
	site, err := normalizeSite(accountID, site)
	if err != nil {
		return err
	}

	token, err := cryptox.Seal(b.key, []byte(plaintext), entryAAD(accountID, site))
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}

	err = b.repo.Upsert(ctx, &models.SiteSecret{
		AccountID:  accountID,
		Site:       site,
		Ciphertext: token,
		UpdatedAt:  b.nowF().UTC(),
	})
	if err != nil {
		return storageErr("save secret", err)
	}

	b.log.Info(ctx, "secret saved", "site", site)
	return nil
}

func (b *secretBox) GetSecret(ctx context.Context, accountID, site string) (string, bool, error) {
	site, err := normalizeSite(accountID, site)
	if err != nil {
		return "", false, err
	}

	entry, err := b.repo.Get(ctx, accountID, site)
	if err != nil {
		return "", false, storageErr("get secret", err)
	}
	if entry == nil {
		return "", false, nil
	}

	plaintext, err := cryptox.Open(b.key, entry.Ciphertext, entryAAD(accountID, site))
	if err != nil {
		b.log.Error(ctx, "stored secret cannot be decrypted", "site", site)
		return "", false, err
	}
	return string(plaintext), true, nil
}

func (b *secretBox) ListSecrets(ctx context.Context, accountID string) ([]models.SecretSummary, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is empty", common.ErrInvalidArgument)
	}
	list, err := b.repo.List(ctx, accountID)
	if err != nil {
		return nil, storageErr("list secrets", err)
	}
	return list, nil
}

func (b *secretBox) DeleteSecret(ctx context.Context, accountID, site string) error {
	site, err := normalizeSite(accountID, site)
	if err != nil {
		return err
	}
	if err := b.repo.Delete(ctx, accountID, site); err != nil {
		return storageErr("delete secret", err)
	}

	b.log.Info(ctx, "secret deleted", "site", site)
	return nil
}
