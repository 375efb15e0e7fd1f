package phone

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		dialCode string
		want     string
	}{
		{"leading zero stripped", "0791234567", "962", "962791234567"},
		{"no leading zero", "791234567", "962", "962791234567"},
		{"punctuation stripped", "079-123 4567", "+962", "962791234567"},
		{"dial code with plus", "791234567", "+962", "962791234567"},
		{"saudi number", "0551234567", "966", "966551234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.dialCode)
			if err != nil {
				t.Fatalf("Normalize(%q, %q) returned error: %v", tt.raw, tt.dialCode, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q, %q) = %q, want %q", tt.raw, tt.dialCode, got, tt.want)
			}
		})
	}
}

func TestNormalizeInvalid(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		dialCode string
	}{
		{"empty number", "", "962"},
		{"empty dial code", "791234567", ""},
		{"letters only", "abc", "962"},
		{"too short", "12", "96"},
		{"too long", "12345678901234", "962"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, tt.dialCode)
			if !errors.Is(err, ErrInvalidPhone) {
				t.Errorf("Normalize(%q, %q) error = %v, want ErrInvalidPhone", tt.raw, tt.dialCode, err)
			}
		})
	}
}
