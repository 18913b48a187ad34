package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt digest of the plaintext at the given cost.
// The cost comes from configuration so tests can run with a cheap setting.
func HashPassword(plain string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether the plaintext matches the stored digest.
// The comparison is constant-time inside bcrypt.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
