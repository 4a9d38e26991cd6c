package queue

import (
	"crypto/rand"
	"encoding/base64"
)

// newURLSafeToken mirrors Python's secrets.token_urlsafe(n): n random
// bytes, base64url-encoded without padding.
func newURLSafeToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
