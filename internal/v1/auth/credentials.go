// Package auth implements password credential handling: per-user salt
// generation, PBKDF2 hashing, and constant-time verification.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the number of random bytes in a per-user salt.
	SaltSize = 32
	// KeySize is the PBKDF2 output length in bytes.
	KeySize = 32
)

// Hasher derives and verifies password hashes. The iteration count is fixed
// at construction so every hash in one deployment uses the same cost.
type Hasher struct {
	iterations int
}

// NewHasher returns a Hasher using the given PBKDF2-HMAC-SHA256 iteration count.
func NewHasher(iterations int) *Hasher {
	return &Hasher{iterations: iterations}
}

// NewSalt returns SaltSize cryptographically random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// Hash derives a hex-encoded PBKDF2-HMAC-SHA256 digest from the password and salt.
func (h *Hasher) Hash(password string, salt []byte) string {
	key := pbkdf2.Key([]byte(password), salt, h.iterations, KeySize, sha256.New)
	return hex.EncodeToString(key)
}

// Verify recomputes the hash for the password under the hex-encoded salt and
// compares it to the expected hex digest in constant time.
func (h *Hasher) Verify(password, saltHex, expectedHash string) bool {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expectedHash)) == 1
}
