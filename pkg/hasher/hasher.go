package hasher

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a bcrypt hash suitable for the api-password-hash flag.
func HashPassword(pw []byte) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(pw, 10)
	return string(bytes), err
}

func PasswordCorrect(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken returns a random URL-safe token, used as the JWT signing
// secret when none is configured.
func GenerateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
