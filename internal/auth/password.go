package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/veritasos/ordem-backend/internal/tokens"
)

const (
	saltBytes         = 16
	pbkdf2Iterations  = 1000
	pbkdf2KeyLength   = 64
	sessionTokenBytes = 32
)

// HashPassword derives the stored "salt:hash" form of a password. Both parts
// are hex; the hex salt string itself keys the derivation so hashes stay
// compatible with existing records.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	saltHex := hex.EncodeToString(salt)
	return saltHex + ":" + derive(password, saltHex), nil
}

// VerifyPassword fails closed on malformed stored values.
func VerifyPassword(password, stored string) bool {
	saltHex, hash, ok := strings.Cut(stored, ":")
	if !ok || saltHex == "" || hash == "" {
		return false
	}
	computed := derive(password, saltHex)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

func derive(password, saltHex string) string {
	key := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// NewSessionToken returns 64 random hex characters with no link to the user.
func NewSessionToken() (string, error) {
	return tokens.Generate(sessionTokenBytes)
}
