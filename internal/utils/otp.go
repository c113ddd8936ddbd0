package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// OTPLength is the number of digits in a generated passcode.
const OTPLength = 6

var ten = big.NewInt(10)

// GenerateSecureOTP generates a cryptographically secure 6-digit OTP.
// Each digit is drawn independently so the distribution is uniform per
// position, leading zeros included.
func GenerateSecureOTP() (string, error) {
	var otp strings.Builder
	otp.Grow(OTPLength)

	for i := 0; i < OTPLength; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		otp.WriteByte(byte('0' + d.Int64()))
	}

	return otp.String(), nil
}

// IsValidOTPFormat checks that a submitted code is exactly 6 decimal digits
func IsValidOTPFormat(code string) bool {
	if len(code) != OTPLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
