package core

import "strings"

// MaxProofLength caps provider tokens accepted from clients.
const MaxProofLength = 2000

// SocialProof is the closed set of provider proofs: GoogleProof, KakaoProof
// and AppleProof.
type SocialProof interface {
	Provider() Provider
	Validate() error
	socialProof()
}

// GoogleProof carries a Google OAuth access token.
type GoogleProof struct {
	AccessToken string
}

// KakaoProof carries a Kakao OAuth access token.
type KakaoProof struct {
	AccessToken string
}

// AppleProof carries a Sign in with Apple identity token (a signed JWT).
type AppleProof struct {
	IdentityToken string
}

func (GoogleProof) Provider() Provider { return ProviderGoogle }
func (KakaoProof) Provider() Provider  { return ProviderKakao }
func (AppleProof) Provider() Provider  { return ProviderApple }

func (GoogleProof) socialProof() {}
func (KakaoProof) socialProof()  {}
func (AppleProof) socialProof()  {}

func (p GoogleProof) Validate() error { return validateProof("accessToken", p.AccessToken) }
func (p KakaoProof) Validate() error  { return validateProof("accessToken", p.AccessToken) }
func (p AppleProof) Validate() error  { return validateProof("idToken", p.IdentityToken) }

func validateProof(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrMissingProof
	}
	if len(value) > MaxProofLength {
		return invalid(field, "too long")
	}
	return nil
}

// ParseSocialProof builds the proof matching a provider tag and validates it.
func ParseSocialProof(provider, accessToken, idToken string) (SocialProof, error) {
	var proof SocialProof
	switch Provider(provider) {
	case ProviderGoogle:
		proof = GoogleProof{AccessToken: accessToken}
	case ProviderKakao:
		proof = KakaoProof{AccessToken: accessToken}
	case ProviderApple:
		proof = AppleProof{IdentityToken: idToken}
	default:
		return nil, ErrUnsupportedProvider
	}
	if err := proof.Validate(); err != nil {
		return nil, err
	}
	return proof, nil
}
