package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeString trims a single-line value and drops control characters.
// Values are stored as sent; escaping is left to whatever renders them.
func SanitizeString(input string) string {
	return removeControlChars(strings.TrimSpace(input))
}

// SanitizeEmail lowercases and trims an address so it can be used as a
// lookup key.
func SanitizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	email = htmlTagPattern.ReplaceAllString(email, "")
	return removeControlChars(email)
}

// SanitizePhone keeps digits, a leading plus and common separators.
func SanitizePhone(phone string) string {
	phone = htmlTagPattern.ReplaceAllString(strings.TrimSpace(phone), "")

	var result strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) || r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' || r == '.' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// SanitizeText is SanitizeString for multi-line input such as a listing
// description: line breaks and tabs survive.
func SanitizeText(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		return -1
	}, strings.TrimSpace(input))
}

func removeControlChars(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}
