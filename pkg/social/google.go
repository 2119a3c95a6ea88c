package social

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aistudy/authkit/core"
)

const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var _ core.SocialVerifier = (*Google)(nil)

// Google resolves an OAuth access token through the userinfo endpoint.
type Google struct {
	client userInfoClient
}

type GoogleOption func(*Google)

// WithGoogleEndpoint points the verifier at another userinfo URL.
func WithGoogleEndpoint(url string) GoogleOption {
	return func(g *Google) { g.client.endpoint = url }
}

// WithGoogleHTTPClient sets the transport used underneath the oauth2 client.
func WithGoogleHTTPClient(c *http.Client) GoogleOption {
	return func(g *Google) { g.client.base = c }
}

func NewGoogle(opts ...GoogleOption) *Google {
	g := &Google{client: userInfoClient{endpoint: GoogleUserInfoURL, timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Google) Provider() core.Provider { return core.ProviderGoogle }

func (g *Google) Verify(ctx context.Context, proof core.SocialProof) (*core.Identity, error) {
	p, ok := proof.(core.GoogleProof)
	if !ok {
		return nil, core.ErrUnsupportedProvider
	}

	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := g.client.fetch(ctx, p.AccessToken, &info); err != nil {
		return nil, err
	}

	if info.ID == "" {
		return nil, fmt.Errorf("%w: userinfo without id", core.ErrProviderRejected)
	}
	if info.Email != "" && !info.VerifiedEmail {
		return nil, core.ErrEmailNotVerified
	}

	return &core.Identity{
		Provider:      core.ProviderGoogle,
		Subject:       info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
	}, nil
}
