package core

import (
	"net/mail"
	"strings"
)

// EmailMaxLength follows RFC 5321.
const EmailMaxLength = 254

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckEmail validates an already normalized address. Display names and
// angle brackets are rejected: only a bare addr-spec with a dotted domain
// is accepted.
func CheckEmail(email string) error {
	if email == "" {
		return invalid("email", "required")
	}
	if len(email) > EmailMaxLength {
		return invalid("email", "too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalid("email", "malformed")
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return invalid("email", "malformed")
	}
	return nil
}

// PlaceholderEmail is synthesized for social accounts whose provider
// withholds the address.
func PlaceholderEmail(provider Provider, subject string) string {
	return NormalizeEmail(string(provider) + "." + subject + "@users.noreply.invalid")
}
