package password

import (
	"errors"
	"strings"
	"unicode"
)

const MinLen = 12

var ErrTooShort = errors.New("password must be at least 12 characters")

// Validate trims pwd and rejects it when shorter than MinLen. warn is
// non-empty when the password is long enough but low on variety.
func Validate(pwd string) (trimmed, warn string, err error) {
	trimmed = strings.TrimSpace(pwd)
	if len([]rune(trimmed)) < MinLen {
		return trimmed, "", ErrTooShort
	}
	if classes(trimmed) < 3 && len([]rune(trimmed)) < 20 {
		warn = "Consider a longer passphrase or mixing letters, digits and symbols."
	}
	return trimmed, warn, nil
}

func classes(pwd string) int {
	var lower, upper, digit, other bool
	for _, r := range pwd {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	n := 0
	for _, b := range []bool{lower, upper, digit, other} {
		if b {
			n++
		}
	}
	return n
}
