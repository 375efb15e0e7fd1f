// Package phone converts user-entered WhatsApp numbers into the canonical
// digits-only international form used as the storage and lookup key.
package phone

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when the normalized number falls outside the
// 8..15 digit E.164 bound.
var ErrInvalidPhone = errors.New("invalid phone number")

// Normalize combines a raw national number with a country dial code into a
// canonical digits-only string: no plus sign, no separators, no leading
// national zero. "0791234567" + "962" and "791234567" + "962" both yield
// "962791234567".
func Normalize(raw, dialCode string) (string, error) {
	national := digits(raw)
	dial := digits(dialCode)
	if national == "" || dial == "" {
		return "", ErrInvalidPhone
	}

	// Local-dialing convention: a single leading zero is dropped before
	// the dial code is prepended.
	national = strings.TrimPrefix(national, "0")

	full := dial + national
	if len(full) < 8 || len(full) > 15 {
		return "", ErrInvalidPhone
	}
	return full, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
