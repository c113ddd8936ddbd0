package utils

import "testing"

func TestGenerateSecureOTP(t *testing.T) {
	t.Run("produces exactly 6 decimal digits", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := GenerateSecureOTP()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(code) != OTPLength {
				t.Fatalf("expected %d digits, got %q", OTPLength, code)
			}
			for _, ch := range code {
				if ch < '0' || ch > '9' {
					t.Fatalf("non-digit character in code %q", code)
				}
			}
		}
	})

	t.Run("digits are roughly uniform per position", func(t *testing.T) {
		const samples = 5000
		var counts [OTPLength][10]int

		for i := 0; i < samples; i++ {
			code, err := GenerateSecureOTP()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for pos := 0; pos < OTPLength; pos++ {
				counts[pos][code[pos]-'0']++
			}
		}

		// Expected 500 per digit per position; allow a generous band that a
		// uniform source essentially never leaves but a biased one would.
		for pos := 0; pos < OTPLength; pos++ {
			for digit := 0; digit < 10; digit++ {
				n := counts[pos][digit]
				if n < 350 || n > 650 {
					t.Errorf("position %d digit %d occurred %d times out of %d", pos, digit, n, samples)
				}
			}
		}
	})

	t.Run("repeated calls differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			code, err := GenerateSecureOTP()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			seen[code] = true
		}
		// 50 draws from a million values colliding down to a handful would
		// mean the source is broken
		if len(seen) < 45 {
			t.Errorf("expected near-unique codes, got %d distinct out of 50", len(seen))
		}
	})
}

func TestIsValidOTPFormat(t *testing.T) {
	cases := []struct {
		code  string
		valid bool
	}{
		{"123456", true},
		{"000000", true},
		{"999999", true},
		{"12345", false},
		{"1234567", false},
		{"", false},
		{"12345a", false},
		{"12 456", false},
		{"12345٠", false}, // arabic-indic digit
	}

	for _, tc := range cases {
		if got := IsValidOTPFormat(tc.code); got != tc.valid {
			t.Errorf("IsValidOTPFormat(%q) = %v, want %v", tc.code, got, tc.valid)
		}
	}
}
