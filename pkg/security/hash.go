// Package security provides the deterministic secret hashing used for
// account passwords and password-reset secrets.
package security

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const hashKeyLength = 64

// HashSecret derives a hex-encoded PBKDF2-SHA512 hash of the secret.
// The same secret, salt and iteration count always produce the same output,
// which is what allows sign-in to compare hashes without ever storing the
// plaintext. Salt and iteration count come from configuration so they can be
// rotated without code changes.
func HashSecret(secret, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(secret), []byte(salt), iterations, hashKeyLength, sha512.New)
	return hex.EncodeToString(key)
}

// HashEquals compares two hash outputs in constant time.
func HashEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
