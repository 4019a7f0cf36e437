// Package password hashes and verifies operator passwords with bcrypt.
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. It is deliberately not configurable at
// runtime so it cannot be weakened by a bad deploy.
const Cost = 12

// MaxLength is the bcrypt input limit in bytes.
const MaxLength = 72

// dummyHash is a cost-12 hash compared against when no credential exists, so
// an unknown email takes as long as a wrong password.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Hash returns a salted bcrypt hash of plaintext.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a
// mismatch, not an error.
func Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Waste burns the same CPU time as a real Verify. Call it on the
// credential-not-found path.
func Waste(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
}
