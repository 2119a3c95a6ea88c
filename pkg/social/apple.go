package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aistudy/authkit/core"
	"github.com/coreos/go-oidc/v3/oidc"
)

const AppleIssuer = "https://appleid.apple.com"

var _ core.SocialVerifier = (*Apple)(nil)

// Apple checks Sign in with Apple identity tokens: signature against
// Apple's published keys, issuer, audience and expiry.
type Apple struct {
	verifier *oidc.IDTokenVerifier
}

// NewApple discovers Apple's signing keys. clientID is the Services ID or
// bundle id the tokens are issued for.
func NewApple(ctx context.Context, clientID string) (*Apple, error) {
	if clientID == "" {
		return nil, errors.New("apple client id is required")
	}

	provider, err := oidc.NewProvider(ctx, AppleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init apple oidc provider: %w", err)
	}

	return &Apple{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewAppleWithKeySet builds a verifier over a fixed key set.
func NewAppleWithKeySet(issuer, clientID string, keys oidc.KeySet) *Apple {
	return &Apple{verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: clientID})}
}

func (a *Apple) Provider() core.Provider { return core.ProviderApple }

func (a *Apple) Verify(ctx context.Context, proof core.SocialProof) (*core.Identity, error) {
	p, ok := proof.(core.AppleProof)
	if !ok {
		return nil, core.ErrUnsupportedProvider
	}

	token, err := a.verifier.Verify(ctx, p.IdentityToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderRejected, err)
	}

	var claims struct {
		Email         string    `json:"email"`
		EmailVerified flexiBool `json:"email_verified"`
	}
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderRejected, err)
	}
	if token.Subject == "" {
		return nil, fmt.Errorf("%w: identity token without subject", core.ErrProviderRejected)
	}

	return &core.Identity{
		Provider:      core.ProviderApple,
		Subject:       token.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
	}, nil
}

// Apple sends email_verified as either a JSON bool or the string "true".
type flexiBool bool

func (b *flexiBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexiBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, _ = strconv.ParseBool(s)
	*b = flexiBool(v)
	return nil
}
