package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindInternal},
		{name: "unknown", err: errors.New("disk full"), want: KindInternal},
		{name: "validation error", err: &ValidationError{Field: "email", Rule: "malformed"}, want: KindValidation},
		{name: "wrapped validation", err: fmt.Errorf("register: %w", invalid("password", "too short")), want: KindValidation},
		{name: "unsupported provider", err: ErrUnsupportedProvider, want: KindValidation},
		{name: "email exists", err: ErrEmailExists, want: KindConflict},
		{name: "wrapped user exists", err: fmt.Errorf("insert: %w", ErrUserExists), want: KindConflict},
		{name: "not found", err: ErrUserNotFound, want: KindNotFound},
		{name: "credentials", err: ErrInvalidCredentials, want: KindAuthentication},
		{name: "expired", err: ErrTokenExpired, want: KindAuthentication},
		{name: "provider down", err: ErrProviderUnavailable, want: KindAuthentication},
		{name: "malformed record", err: ErrInvalidUser, want: KindInternal},
		{name: "config", err: ErrSecretTooShort, want: KindInternal},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := KindOf(test.err); got != test.want {
				t.Errorf("KindOf() = %s, want %s", got, test.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := invalid("email", "malformed")

	if err.Error() != "invalid email: malformed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should wrap ErrValidation")
	}
}
