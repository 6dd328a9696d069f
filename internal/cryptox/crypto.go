// Package cryptox implements password hashing for stored credentials:
// random salts, PBKDF2-HMAC-SHA256 key derivation, and constant-time
// verification. Salts and hashes travel as standard base64 strings.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// Params controls the cost and sizes of derived password hashes. Changing
// Iterations or KeyLength invalidates every stored hash.
type Params struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// DefaultParams are used when the configuration does not override them.
var DefaultParams = Params{
	Iterations: 100_000,
	SaltLength: 16,
	KeyLength:  32,
}

// GenerateSalt returns p.SaltLength random bytes, base64 encoded.
func GenerateSalt(p Params) (string, error) {
	b, err := common.RandomBytes(p.SaltLength)
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// HashPassword derives a p.KeyLength key from password and the decoded salt.
// The result is deterministic for identical inputs, which is what makes
// verification by recomputation possible.
func HashPassword(password, salt string, p Params) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", common.ErrInvalidArgument)
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil || len(rawSalt) == 0 {
		return "", fmt.Errorf("%w: malformed salt", common.ErrInvalidArgument)
	}
	key := pbkdf2.Key([]byte(password), rawSalt, p.Iterations, p.KeyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key), nil
}

// VerifyPassword recomputes the hash of password with storedSalt and compares
// it with storedHash in constant time. Malformed input yields false.
func VerifyPassword(password, storedHash, storedSalt string, p Params) bool {
	want, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil || len(want) == 0 {
		return false
	}
	candidate, err := HashPassword(password, storedSalt, p)
	if err != nil {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(candidate)
	if err != nil {
		return false
	}
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(want, got) == 1
}
