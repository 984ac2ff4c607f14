package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// GenerateOTP returns a 6-digit one-time code and its hash. Only the hash
// is persisted.
func GenerateOTP() (string, []byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", nil, fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	return code, HashOTP(code), nil
}

func HashOTP(code string) []byte {
	sum := sha256.Sum256([]byte(code))
	return sum[:]
}

func VerifyOTP(code string, hash []byte) bool {
	computed := HashOTP(code)
	return subtle.ConstantTimeCompare(computed, hash) == 1
}
