package services

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/cryptox"
)

// saltSize is the number of random bytes behind each hex-encoded salt.
const saltSize = 16

// HashFormat tells how a stored password hash was produced.
type HashFormat int

const (
	// HashFormatLegacy is hex(sha256(password || pepper)) with no salt.
	HashFormatLegacy HashFormat = iota
	// HashFormatSalted is "salt$hash" where hash is argon2id over
	// password || pepper || salt.
	HashFormatSalted
)

func (f HashFormat) String() string {
	if f == HashFormatSalted {
		return "salted"
	}
	return "legacy"
}

// StoredHash is a parsed password hash.
type StoredHash struct {
	Format HashFormat
	Salt   string
	Digest string
}

// ParseHash splits a stored hash. The "$" separator is the discriminant:
// with it the record is salted, without it the record is legacy.
func ParseHash(stored string) StoredHash {
	salt, digest, found := strings.Cut(stored, "$")
	if !found {
		return StoredHash{Format: HashFormatLegacy, Digest: stored}
	}
	return StoredHash{Format: HashFormatSalted, Salt: salt, Digest: digest}
}

// PasswordHasher hashes and verifies account passwords with the
// installation pepper.
type PasswordHasher struct {
	pepper      []byte
	params      cryptox.HashParams
	allowLegacy bool
}

func NewPasswordHasher(pepper []byte, params cryptox.HashParams, allowLegacy bool) *PasswordHasher {
	return &PasswordHasher{pepper: pepper, params: params, allowLegacy: allowLegacy}
}

// Hash draws a fresh salt and returns "salt$hash".
func (h *PasswordHasher) Hash(password []byte) (string, error) {
	salt, err := common.MakeRandHexString(saltSize)
	if err != nil {
		return "", err
	}
	return salt + "$" + hex.EncodeToString(h.salted(password, salt)), nil
}

// Verify reports whether password matches stored. Malformed records and
// legacy records (when legacy support is off) never match.
func (h *PasswordHasher) Verify(password []byte, stored string) bool {
	parsed := ParseHash(stored)

	want, err := hex.DecodeString(parsed.Digest)
	if err != nil || len(want) == 0 {
		return false
	}

	var got []byte
	switch parsed.Format {
	case HashFormatSalted:
		if parsed.Salt == "" {
			return false
		}
		got = h.salted(password, parsed.Salt)
	case HashFormatLegacy:
		if !h.allowLegacy {
			return false
		}
		got = h.legacy(password)
	}

	return subtle.ConstantTimeCompare(got, want) == 1
}

// NeedsRehash reports whether stored should be replaced by a fresh salted hash.
func (h *PasswordHasher) NeedsRehash(stored string) bool {
	return ParseHash(stored).Format != HashFormatSalted
}

func (h *PasswordHasher) salted(password []byte, salt string) []byte {
	input := make([]byte, 0, len(password)+len(h.pepper)+len(salt))
	input = append(input, password...)
	input = append(input, h.pepper...)
	input = append(input, salt...)
	defer common.WipeByteArray(input)

	return cryptox.DeriveKey(input, []byte(salt), h.params)
}

func (h *PasswordHasher) legacy(password []byte) []byte {
	return cryptox.Digest(password, h.pepper)
}
