package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpDigits = 6

// GenerateSecureOTP returns a random login code with a fixed number of
// digits, drawn from crypto/rand. Leading zeros are preserved.
func GenerateSecureOTP() (string, error) {
	var limit int64 = 1
	for i := 0; i < otpDigits; i++ {
		limit *= 10
	}

	n, err := rand.Int(rand.Reader, big.NewInt(limit))
	if err != nil {
		return "", ErrorHandler(err, "failed to generate otp")
	}

	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
