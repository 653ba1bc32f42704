package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const otpDigits = 6

var otpMax = big.NewInt(1_000_000) // 10^otpDigits

// generateOTP returns a uniformly random 6-digit code, zero-padded so that
// codes like "004213" survive as strings end to end.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

// maskAddress hides most of an email's local part for display in login
// responses, e.g. "alice@example.com" becomes "a***@example.com".
func maskAddress(address string) string {
	at := strings.LastIndex(address, "@")
	if at <= 0 {
		return "***"
	}
	return address[:1] + "***" + address[at:]
}
