// Package keystore manages the two installation secrets of the vault: the
// symmetric key that protects site secrets and the pepper mixed into every
// password hash. Each lives in its own file and is created on first use.
package keystore

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/filex"
)

// MaterialSize is the length in bytes of both the key and the pepper.
const MaterialSize = 32

// KeyStore loads or creates the key and pepper files. Loaded material is
// cached, so repeated calls return the same bytes without touching the disk.
type KeyStore struct {
	keyPath    string
	pepperPath string

	mu     sync.Mutex
	key    []byte
	pepper []byte
}

func New(keyPath, pepperPath string) *KeyStore {
	return &KeyStore{keyPath: keyPath, pepperPath: pepperPath}
}

// LoadOrCreateKey returns the encryption key, generating and persisting it
// on first use. Losing this file makes every stored secret unreadable.
func (k *KeyStore) LoadOrCreateKey() ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.key == nil {
		key, err := loadOrCreate(k.keyPath, "key")
		if err != nil {
			return nil, err
		}
		k.key = key
	}
	return k.key, nil
}

// LoadOrCreatePepper returns the pepper, generating and persisting it on
// first use. Losing this file invalidates every stored password hash.
func (k *KeyStore) LoadOrCreatePepper() ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.pepper == nil {
		pepper, err := loadOrCreate(k.pepperPath, "pepper")
		if err != nil {
			return nil, err
		}
		k.pepper = pepper
	}
	return k.pepper, nil
}

func loadOrCreate(path, what string) ([]byte, error) {
	data, ok, err := filex.ReadIfExists(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", common.ErrStorage, what, err)
	}
	if ok {
		if len(data) != MaterialSize {
			return nil, fmt.Errorf("%w: %s file %s is corrupt: %d bytes, want %d",
				common.ErrStorage, what, path, len(data), MaterialSize)
		}
		return data, nil
	}

	fresh := make([]byte, MaterialSize)
	if _, err := rand.Read(fresh); err != nil {
		return nil, fmt.Errorf("%w: generate %s: %w", common.ErrStorage, what, err)
	}
	if err := filex.WriteFileAtomic(path, fresh, filex.FileMode); err != nil {
		return nil, fmt.Errorf("%w: persist %s: %w", common.ErrStorage, what, err)
	}
	return fresh, nil
}
