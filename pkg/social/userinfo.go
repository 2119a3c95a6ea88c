// Package social verifies proofs issued by external identity providers and
// turns them into core.Identity values. It makes no account decisions.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aistudy/authkit/core"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 10 * time.Second

// maxUserInfoBytes caps the userinfo body we are willing to decode.
const maxUserInfoBytes = 1 << 20

// userInfoClient performs bearer-authenticated GETs against a provider's
// userinfo endpoint.
type userInfoClient struct {
	endpoint string
	timeout  time.Duration
	base     *http.Client
}

func (c userInfoClient) fetch(ctx context.Context, accessToken string, out any) error {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", core.ErrProviderRejected, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", core.ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode userinfo: %v", core.ErrProviderUnavailable, err)
	}
	return nil
}
