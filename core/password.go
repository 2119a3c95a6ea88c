package core

import "strings"

const (
	PasswordMinLength = 8
	PasswordMaxLength = 128

	// PasswordSymbols is the fixed set a password must draw at least one
	// symbol from.
	PasswordSymbols = "@$!%*?&"
)

// PasswordPolicy is the composition rule for new passwords.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
	Symbols   string
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength: PasswordMinLength,
		MaxLength: PasswordMaxLength,
		Symbols:   PasswordSymbols,
	}
}

// Check returns a *ValidationError for the first rule the password breaks.
// Length is counted in characters, not bytes. Letter and digit classes are
// ASCII only; other characters count toward length and nothing else.
func (p PasswordPolicy) Check(password string) error {
	if password == "" {
		return invalid("password", "required")
	}
	n := len([]rune(password))
	if n < p.MinLength {
		return invalid("password", "too short")
	}
	if n > p.MaxLength {
		return invalid("password", "too long")
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(p.Symbols, r):
			symbol = true
		}
	}

	switch {
	case !lower:
		return invalid("password", "missing lowercase letter")
	case !upper:
		return invalid("password", "missing uppercase letter")
	case !digit:
		return invalid("password", "missing digit")
	case !symbol:
		return invalid("password", "missing symbol")
	}
	return nil
}

// CheckLoginPassword only bounds the size of a login attempt; composition is
// never checked at login.
func CheckLoginPassword(password string) error {
	if password == "" {
		return invalid("password", "required")
	}
	if len([]rune(password)) > PasswordMaxLength {
		return invalid("password", "too long")
	}
	return nil
}
