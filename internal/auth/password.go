package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// PasswordHasher encodes passwords for the account directory.
type PasswordHasher struct {
	bcrypt bool
	cost   int
}

// NewPasswordHasher returns a hasher storing bcrypt hashes when useBcrypt is
// set and plaintext otherwise.
func NewPasswordHasher(useBcrypt bool, cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{bcrypt: useBcrypt, cost: cost}
}

// Encode returns the value to store in the account's password field.
func (h PasswordHasher) Encode(password string) (string, error) {
	if !h.bcrypt {
		return password, nil
	}
	return HashPassword(prehash(password), h.cost)
}

// Matches reports whether plain matches stored. Directories written before
// hashing was enabled hold plaintext, so both forms are accepted.
func (h PasswordHasher) Matches(stored, plain string) bool {
	if isBcryptHash(stored) {
		return ComparePassword(stored, prehash(plain)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

func isBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// prehash folds a password of any length into 44 bytes, under bcrypt's
// 72 byte input limit.
func prehash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}
