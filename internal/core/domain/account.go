package domain

import (
	"regexp"
	"strings"
	"time"
)

// Account is the canonical identity record. The ID is stable across email
// and phone changes and is the key the wallet store uses.
type Account struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"` // stored in +91 form
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[6-9]\d{9}$`)
	digitRe = regexp.MustCompile(`\D`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// NormalizeIndianPhone reduces a phone number in any accepted textual form
// to its bare 10-digit form. Accepted: 10 digits starting 6-9, optionally
// prefixed with 91 / +91 and interleaved with separators. Returns "" when
// the input is not a valid Indian mobile number.
func NormalizeIndianPhone(s string) string {
	cleaned := digitRe.ReplaceAllString(s, "")
	if len(cleaned) == 12 && strings.HasPrefix(cleaned, "91") {
		cleaned = cleaned[2:]
	}
	if !phoneRe.MatchString(cleaned) {
		return ""
	}
	return cleaned
}

// PhoneVariants returns the two stored/lookup forms of a phone number:
// the bare 10-digit form and the +91-prefixed form. Both must resolve to
// the same account. Returns nil for invalid input.
func PhoneVariants(s string) []string {
	normalized := NormalizeIndianPhone(s)
	if normalized == "" {
		return nil
	}
	return []string{normalized, "+91" + normalized}
}

// StoredPhoneForm returns the canonical persistence form (+91-prefixed),
// or "" for invalid input.
func StoredPhoneForm(s string) string {
	normalized := NormalizeIndianPhone(s)
	if normalized == "" {
		return ""
	}
	return "+91" + normalized
}

// ValidatePassword enforces the account password policy: at least 6
// characters with an uppercase letter, a lowercase letter and a digit.
// Returns a client-facing description of the first violation, or "".
func ValidatePassword(password string) string {
	if len(password) < 6 {
		return "Password must be at least 6 characters long"
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper {
		return "Password must contain at least one uppercase letter"
	}
	if !lower {
		return "Password must contain at least one lowercase letter"
	}
	if !digit {
		return "Password must contain at least one numeric digit"
	}
	return ""
}
