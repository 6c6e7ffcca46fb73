package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Confirmation code bounds. Codes are always six digits so that email copy
// and client input fields can assume a fixed width.
const (
	confirmCodeMin = 100000
	confirmCodeMax = 999999
)

// ResetTokenBytes is the entropy of a password-reset token before hex encoding.
const ResetTokenBytes = 32

// ConfirmationCode generates a uniform random six-digit confirmation code.
func ConfirmationCode() (int, error) {
	span := big.NewInt(confirmCodeMax - confirmCodeMin + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, fmt.Errorf("failed to generate confirmation code: %w", err)
	}
	return confirmCodeMin + int(n.Int64()), nil
}

// ResetToken generates a random password-reset token as a 64-character
// hex string.
func ResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
