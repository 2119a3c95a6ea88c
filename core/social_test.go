package core

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSocialProof(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		accessToken string
		idToken     string
		want        SocialProof
		wantErr     error
	}{
		{name: "google", provider: "google", accessToken: "at", want: GoogleProof{AccessToken: "at"}},
		{name: "kakao", provider: "kakao", accessToken: "at", want: KakaoProof{AccessToken: "at"}},
		{name: "apple", provider: "apple", idToken: "a.b.c", want: AppleProof{IdentityToken: "a.b.c"}},
		{name: "apple ignores access token", provider: "apple", accessToken: "at", wantErr: ErrMissingProof},
		{name: "google needs access token", provider: "google", idToken: "a.b.c", wantErr: ErrMissingProof},
		{name: "blank token", provider: "kakao", accessToken: "   ", wantErr: ErrMissingProof},
		{name: "oversized token", provider: "google", accessToken: strings.Repeat("x", MaxProofLength+1), wantErr: ErrValidation},
		{name: "unknown provider", provider: "github", accessToken: "at", wantErr: ErrUnsupportedProvider},
		{name: "email is not social", provider: "email", accessToken: "at", wantErr: ErrUnsupportedProvider},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			got, err := ParseSocialProof(test.provider, test.accessToken, test.idToken)

			// Assert
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("ParseSocialProof() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSocialProof() error = %v", err)
			}
			if got != test.want {
				t.Errorf("ParseSocialProof() = %#v, want %#v", got, test.want)
			}
			if got.Provider() != Provider(test.provider) {
				t.Errorf("Provider() = %s", got.Provider())
			}
		})
	}
}
