package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"deeptracex/internal/constants"
)

var (
	emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	phoneStrip   = regexp.MustCompile(`[^0-9+]`)
)

// ValidateUsername validates an account username according to business rules
func ValidateUsername(username string) error {
	if len(username) < constants.MinUsernameLength || len(username) > constants.MaxUsernameLength {
		return fmt.Errorf("username must be between %d and %d characters",
			constants.MinUsernameLength, constants.MaxUsernameLength)
	}

	for _, r := range username {
		if !isValidUsernameChar(r) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}

	return nil
}

// ValidateIP validates an IP address lookup query
func ValidateIP(query string) error {
	if query == "" {
		return fmt.Errorf("IP address required")
	}
	if net.ParseIP(query) == nil {
		return fmt.Errorf("invalid IP address")
	}
	return nil
}

// ValidateEmail validates an email lookup query
func ValidateEmail(query string) error {
	if query == "" || !emailPattern.MatchString(query) {
		return fmt.Errorf("valid email required")
	}
	return nil
}

// NormalizePhone strips everything except digits and a leading plus sign and
// validates the remainder
func NormalizePhone(query string) (string, error) {
	clean := phoneStrip.ReplaceAllString(query, "")
	digits := strings.TrimPrefix(clean, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return "", fmt.Errorf("phone number must contain 7 to 15 digits")
	}
	return clean, nil
}

// ValidateBindCode checks that a bind code is exactly six digits
func ValidateBindCode(code string) error {
	if len(code) != 6 {
		return fmt.Errorf("bind code must be 6 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("bind code must be 6 digits")
		}
	}
	return nil
}

// isValidUsernameChar checks if a character is valid for usernames
func isValidUsernameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_'
}
