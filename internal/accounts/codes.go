package accounts

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode returns a 6-digit verification code with uniform
// distribution, leading zeros included.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
