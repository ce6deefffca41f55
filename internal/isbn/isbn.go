// Package isbn validates and canonicalizes ISBN identifiers.
//
// Every identifier entering the system passes through Normalize exactly once;
// downstream components (resolvers, cache, reading-state store) only ever see
// the canonical 13-digit form.
package isbn

import (
	"errors"
	"strings"
)

// ErrInvalidISBN is returned for malformed input: wrong length after
// stripping separators, non-digit characters, or a checksum mismatch.
var ErrInvalidISBN = errors.New("invalid ISBN")

// Normalize strips separators, validates the checksum and returns the
// canonical ISBN-13 form. ISBN-10 input is converted by prefixing "978"
// and recomputing the check digit.
func Normalize(raw string) (string, error) {
	s := strip(raw)

	switch len(s) {
	case 10:
		if !validISBN10(s) {
			return "", ErrInvalidISBN
		}
		return toISBN13(s), nil
	case 13:
		if !validISBN13(s) {
			return "", ErrInvalidISBN
		}
		return s, nil
	default:
		return "", ErrInvalidISBN
	}
}

// IsValid reports whether raw is a checksum-valid ISBN-10 or ISBN-13.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// strip removes common separators and uppercases a trailing check digit.
func strip(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'X' || r == 'x':
			b.WriteRune('X')
		case r == '-' || r == ' ' || r == '.':
			// separator, skip
		default:
			// Any other character invalidates the input; keep it so the
			// length/digit checks reject it.
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validISBN10 checks the weighted mod-11 checksum. 'X' is only legal as
// the final check digit, where it stands for 10.
func validISBN10(s string) bool {
	total := 0
	for i := 0; i < 9; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		total += (10 - i) * int(d-'0')
	}

	check := s[9]
	switch {
	case check == 'X':
		total += 10
	case check >= '0' && check <= '9':
		total += int(check - '0')
	default:
		return false
	}

	return total%11 == 0
}

// validISBN13 checks the mod-10 checksum with alternating 1/3 weights.
func validISBN13(s string) bool {
	total := 0
	for i := 0; i < 12; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		if i%2 == 0 {
			total += int(d - '0')
		} else {
			total += 3 * int(d-'0')
		}
	}
	if s[12] < '0' || s[12] > '9' {
		return false
	}
	return (10-total%10)%10 == int(s[12]-'0')
}

// toISBN13 converts a valid ISBN-10 to ISBN-13 by prefixing "978" to the
// first nine digits and recomputing the check digit.
func toISBN13(s string) string {
	body := "978" + s[:9]
	total := 0
	for i := 0; i < 12; i++ {
		if i%2 == 0 {
			total += int(body[i] - '0')
		} else {
			total += 3 * int(body[i]-'0')
		}
	}
	check := byte((10-total%10)%10) + '0'
	return body + string(check)
}
