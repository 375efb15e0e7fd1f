package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode generates a cryptographically secure numeric OTP of the given
// length, uniformly distributed over [0, 10^length), zero-padded.
func GenerateCode(length int) (string, error) {
	if length < 4 || length > 10 {
		return "", fmt.Errorf("unsupported OTP length %d", length)
	}

	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
