package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a local credential with bcrypt at the configured
// cost (BCRYPT_COST). Out-of-range costs fall back to the library
// default so a bad env value cannot weaken or break hashing.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Malformed hashes (OAuth accounts never have one) simply fail the check.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
