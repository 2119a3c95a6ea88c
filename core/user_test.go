package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	got := NormalizeEmail("  Test.User@Example.COM \n")

	if got != "test.user@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestCheckEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		wantRule string
	}{
		{name: "valid", email: "test@example.com"},
		{name: "plus tag", email: "test+tag@mail.example.co.kr"},
		{name: "empty", email: "", wantRule: "required"},
		{name: "no at", email: "test.example.com", wantRule: "malformed"},
		{name: "no domain dot", email: "test@localhost", wantRule: "malformed"},
		{name: "trailing dot", email: "test@example.", wantRule: "malformed"},
		{name: "display name", email: "Test <test@example.com>", wantRule: "malformed"},
		{name: "angle brackets", email: "<test@example.com>", wantRule: "malformed"},
		{name: "too long", email: strings.Repeat("a", 250) + "@example.com", wantRule: "too long"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			err := CheckEmail(test.email)

			if test.wantRule == "" {
				if err != nil {
					t.Fatalf("CheckEmail() error = %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != "email" || verr.Rule != test.wantRule {
				t.Errorf("CheckEmail() error = %v, want email/%s", err, test.wantRule)
			}
		})
	}
}

func TestPlaceholderEmail(t *testing.T) {
	got := PlaceholderEmail(ProviderKakao, "12345")

	if got != "kakao.12345@users.noreply.invalid" {
		t.Errorf("PlaceholderEmail() = %q", got)
	}
	if err := CheckEmail(got); err != nil {
		t.Errorf("placeholder should be a valid address: %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	hash := "$2a$12$hash"
	subject := "sub-1"
	empty := ""

	tests := []struct {
		name    string
		user    *User
		wantErr bool
	}{
		{name: "local", user: &User{Email: "a@example.com", Provider: ProviderEmail, PasswordHash: &hash}},
		{name: "social", user: &User{Email: "a@example.com", Provider: ProviderApple, ProviderID: &subject}},
		{name: "nil", user: nil, wantErr: true},
		{name: "no email", user: &User{Provider: ProviderEmail, PasswordHash: &hash}, wantErr: true},
		{name: "unknown provider", user: &User{Email: "a@example.com", Provider: "github", ProviderID: &subject}, wantErr: true},
		{name: "both credentials", user: &User{Email: "a@example.com", Provider: ProviderEmail, PasswordHash: &hash, ProviderID: &subject}, wantErr: true},
		{name: "neither credential", user: &User{Email: "a@example.com", Provider: ProviderEmail}, wantErr: true},
		{name: "empty hash", user: &User{Email: "a@example.com", Provider: ProviderEmail, PasswordHash: &empty}, wantErr: true},
		{name: "local with provider id", user: &User{Email: "a@example.com", Provider: ProviderEmail, ProviderID: &subject}, wantErr: true},
		{name: "social with hash", user: &User{Email: "a@example.com", Provider: ProviderGoogle, PasswordHash: &hash}, wantErr: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			err := test.user.Validate()
			if test.wantErr && !errors.Is(err, ErrInvalidUser) {
				t.Errorf("Validate() error = %v, want ErrInvalidUser", err)
			}
			if !test.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestUserPublicDropsSecrets(t *testing.T) {
	hash := "$2a$12$hash"
	u := &User{ID: "id-1", Email: "a@example.com", Provider: ProviderEmail, PasswordHash: &hash}

	p := u.Public()

	if p.ID != "id-1" || p.Email != "a@example.com" || p.Provider != ProviderEmail {
		t.Errorf("Public() = %+v", p)
	}
}
