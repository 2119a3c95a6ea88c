package social

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aistudy/authkit/core"
)

const KakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

var _ core.SocialVerifier = (*Kakao)(nil)

type Kakao struct {
	client userInfoClient
}

type KakaoOption func(*Kakao)

func WithKakaoEndpoint(url string) KakaoOption {
	return func(k *Kakao) { k.client.endpoint = url }
}

func WithKakaoHTTPClient(c *http.Client) KakaoOption {
	return func(k *Kakao) { k.client.base = c }
}

func NewKakao(opts ...KakaoOption) *Kakao {
	k := &Kakao{client: userInfoClient{endpoint: KakaoUserInfoURL, timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Kakao) Provider() core.Provider { return core.ProviderKakao }

// Verify accepts accounts without a shared email; the caller decides what
// address to store for them. An address Kakao marks invalid or unverified
// is reported with EmailVerified false.
func (k *Kakao) Verify(ctx context.Context, proof core.SocialProof) (*core.Identity, error) {
	p, ok := proof.(core.KakaoProof)
	if !ok {
		return nil, core.ErrUnsupportedProvider
	}

	var info struct {
		ID      int64 `json:"id"`
		Account struct {
			Email           string `json:"email"`
			IsEmailValid    bool   `json:"is_email_valid"`
			IsEmailVerified bool   `json:"is_email_verified"`
		} `json:"kakao_account"`
	}
	if err := k.client.fetch(ctx, p.AccessToken, &info); err != nil {
		return nil, err
	}
	if info.ID == 0 {
		return nil, fmt.Errorf("%w: userinfo without id", core.ErrProviderRejected)
	}

	return &core.Identity{
		Provider:      core.ProviderKakao,
		Subject:       strconv.FormatInt(info.ID, 10),
		Email:         info.Account.Email,
		EmailVerified: info.Account.IsEmailValid && info.Account.IsEmailVerified,
	}, nil
}
