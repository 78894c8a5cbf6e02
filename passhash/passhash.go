// Package passhash salts and hashes passwords with PBKDF2-HMAC-SHA256
package passhash

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize   = 16
	KeySize    = 32
	Iterations = 100_000
)

// Hash returns a fresh random salt followed by the key derived from plaintext.
// the output differs on every call
func Hash(plaintext string) ([]byte, error) {
	salt := securecookie.GenerateRandomKey(SaltSize)
	if salt == nil {
		return nil, errors.New("couldn't generate salt")
	}
	return append(salt, derive(plaintext, salt)...), nil
}

// Verify reports whether candidate hashes to the key stored after the salt
func Verify(stored []byte, candidate string) bool {
	if len(stored) <= SaltSize {
		return false
	}
	salt, expected := stored[:SaltSize], stored[SaltSize:]
	return subtle.ConstantTimeCompare(derive(candidate, salt), expected) == 1
}

func derive(plaintext string, salt []byte) []byte {
	return pbkdf2.Key([]byte(plaintext), salt, Iterations, KeySize, sha256.New)
}
