package password

import (
	"errors"
	"unicode/utf8"
)

const (
	MinLength = 8
	MaxLength = 32
)

var (
	ErrPolicyLength     = errors.New("password must be between 8 and 32 characters")
	ErrPolicyComplexity = errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number or special character")
)

// ValidatePolicy checks pw against the account password policy: 8 to 32
// characters, at least one ASCII uppercase and one ASCII lowercase letter,
// and at least one digit or non-word character. Letters outside ASCII count
// as non-word characters.
func ValidatePolicy(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < MinLength || n > MaxLength {
		return ErrPolicyLength
	}

	var upper, lower, digitOrSpecial bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9' || !isWordRune(r):
			digitOrSpecial = true
		}
	}
	if !upper || !lower || !digitOrSpecial {
		return ErrPolicyComplexity
	}
	return nil
}

// isWordRune matches the \w class: ASCII letters, digits and underscore.
func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}
