package auth

import "golang.org/x/crypto/bcrypt"

// BcryptCost is the cost factor for bcrypt password hashing.
const BcryptCost = 12

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Empty or malformed
// hashes (legacy seed data, truncated rows) count as a mismatch rather than
// an error.
func VerifyPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
