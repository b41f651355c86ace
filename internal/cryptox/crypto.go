// Package cryptox holds the credential-hashing primitives for local agent
// accounts.
package cryptox

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
)

// DeriveKey stretches a password with argon2id. The salt must be unique per
// user; parameters follow the argon2 authors' interactive recommendation.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key into the value stored at rest, so the
// key itself never touches the snapshot.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}
