// Package email holds helpers for the email identity key.
package email

import (
	"strings"
	"unicode"
)

// Normalize trims and lower-cases an address. All identity comparisons go
// through it.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// SameIdentity reports whether two addresses name the same identity: exact
// equality after normalization, never a prefix or substring match.
func SameIdentity(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// DeriveNameFromEmail guesses a first and last name from the local part.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
