package auth

import "golang.org/x/crypto/bcrypt"

// BcryptCost is the fixed work factor for stored password hashes.
const BcryptCost = 10

// maxPasswordBytes is the bcrypt input limit; longer passwords are truncated.
const maxPasswordBytes = 72

// dummyHash is compared against when no account matches, so failed logins cost the same.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)

// HashPassword hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(passwordBytes(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), passwordBytes(plain))
}

// BurnComparison performs a throwaway hash comparison.
func BurnComparison(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, passwordBytes(plain))
}

func passwordBytes(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxPasswordBytes {
		return b[:maxPasswordBytes]
	}
	return b
}
