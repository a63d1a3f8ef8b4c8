package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// emailRegex is a simple regex for validating email format.
// It checks for: local-part@domain.tld format.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{2,31}$`)
	mobileRegex   = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
)

// IsValidEmail checks if the given string is a valid email address format.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUsername checks a username is 3-32 characters of letters, digits,
// dots, hyphens and underscores, starting with a letter or digit.
func IsValidUsername(name string) bool {
	return usernameRegex.MatchString(name)
}

// IsValidMobileNumber accepts 9 to 15 digits with an optional leading '+'.
// Spaces and hyphens are ignored.
func IsValidMobileNumber(number string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(number)
	return mobileRegex.MatchString(cleaned)
}

// Truncate shortens s to at most max runes, ending with "..." when cut.
// Newlines are flattened to spaces.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// ShortFingerprint returns the first 16 hex characters of a fingerprint.
func ShortFingerprint(fingerprint string) string {
	if len(fingerprint) <= 16 {
		return fingerprint
	}
	return fingerprint[:16]
}
