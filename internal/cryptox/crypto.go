// Package cryptox holds the cryptographic primitives of the vault: argon2id
// key stretching, HKDF subkeys and AES-256-GCM sealing of short strings.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/genpass/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of every symmetric key used by the vault (AES-256).
const KeySize = 32

var errTokenTooShort = errors.New("token too short")

// HashParams are the argon2id cost parameters.
type HashParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultHashParams is what DeriveKey uses unless configured otherwise.
var DefaultHashParams = HashParams{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}

// DeriveKey stretches secret with argon2id and returns KeySize bytes.
func DeriveKey(secret, salt []byte, p HashParams) []byte {
	return argon2.IDKey(secret, salt, p.Time, p.MemoryKiB, p.Threads, KeySize)
}

// Digest returns sha256 over the concatenation of parts.
func Digest(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// DeriveSubkey expands master into a KeySize key bound to info, so a single
// installation key can serve several purposes without reuse.
func DeriveSubkey(master []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under key and returns the token
// base64(nonce || ciphertext). aad is authenticated but not stored; the same
// value must be passed to Open.
//
// Example:
//
//	token, err := cryptox.Seal(key, []byte("p@ss"), []byte("acct/example.com"))
//	if err != nil {
//	    return err
//	}
func Seal(key, plaintext, aad []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, plaintext, aad)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Any failure (bad encoding, truncated token, wrong key,
// tampered data or mismatched aad) is reported as common.ErrDecryption.
func Open(key []byte, token string, aad []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryption, err)
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryption, err)
	}

	ns := aead.NonceSize()
	if len(raw) < ns+aead.Overhead() {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryption, errTokenTooShort)
	}

	plaintext, err := aead.Open(nil, raw[:ns], raw[ns:], aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryption, err)
	}
	return plaintext, nil
}
