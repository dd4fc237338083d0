// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
	phoneStrip   = regexp.MustCompile(`[^\d+]`)
	nonDigit     = regexp.MustCompile(`\D`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// CleanPhone removes every character that is neither a digit nor '+'.
func CleanPhone(phone string) string {
	return phoneStrip.ReplaceAllString(phone, "")
}

// ValidatePhone checks a phone number against the E.164-like format guests
// are imported with: an optional leading '+' and 10 to 15 digits, after
// separators such as spaces, dashes and parentheses are stripped.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(CleanPhone(phone))
}

// FormatPhoneE164 returns the number as '+' followed by digits, prefixing
// countryCode when the input carries no '+'.
func FormatPhoneE164(phone, countryCode string) string {
	digits := nonDigit.ReplaceAllString(phone, "")
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return "+" + digits
	}
	if countryCode == "" {
		countryCode = "+1"
	}
	return countryCode + digits
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
