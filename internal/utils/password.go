package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// preHash collapses the plaintext through SHA-256 before bcrypt so that
// passwords longer than bcrypt's 72-byte input limit still contribute
// their full entropy to the hash.
func preHash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// HashPassword returns bcrypt(sha256(plain)) using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(preHash(plain)), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash against a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(preHash(plain))) == nil
}
