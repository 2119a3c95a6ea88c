package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/golang-jwt/jwt/v5"
)

var _ core.TokenManager = (*JWT)(nil)

// TokenConfig configures token issuance. Zero values fall back to the core
// defaults.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// sessionClaims is the wire payload.
type sessionClaims struct {
	Email    string        `json:"email"`
	Provider core.Provider `json:"provider"`
	jwt.RegisteredClaims
}

// JWT issues and verifies HS256 session tokens.
type JWT struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	ids      *NanoIDGenerator
	now      func() time.Time
}

func NewJWT(c TokenConfig) (*JWT, error) {
	if c.Secret == "" {
		return nil, core.ErrSecretRequired
	}
	if len(c.Secret) < core.MinSecretLength {
		return nil, fmt.Errorf("%w - minimum of %d characters", core.ErrSecretTooShort, core.MinSecretLength)
	}
	if c.Issuer == "" {
		c.Issuer = core.DefaultIssuer
	}
	if c.Audience == "" {
		c.Audience = core.DefaultAudience
	}
	if c.TTL == 0 {
		c.TTL = core.DefaultTokenTTL
	}

	ids, err := NewNanoID()
	if err != nil {
		return nil, err
	}

	return &JWT{
		secret:   []byte(c.Secret),
		issuer:   c.Issuer,
		audience: c.Audience,
		ttl:      c.TTL,
		ids:      ids,
		now:      time.Now,
	}, nil
}

// Issue signs {sub, email, provider} with issuer, audience and expiry.
func (j *JWT) Issue(u *core.User) (string, error) {
	if u == nil || u.ID == "" {
		return "", core.ErrInvalidUser
	}

	jti, err := j.ids.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}

	now := j.now()
	claims := sessionClaims{
		Email:    u.Email,
		Provider: u.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.ID,
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry.
// Expiry yields core.ErrTokenExpired, every other failure
// core.ErrTokenInvalid. The signature is checked before any claim, so a
// forged token is never reported as expired.
func (j *JWT) Verify(token string) (*core.Claims, error) {
	if token == "" {
		return nil, core.ErrTokenInvalid
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, core.ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", core.ErrTokenInvalid, err)
	}

	if claims.Subject == "" || !claims.Provider.Valid() {
		return nil, core.ErrTokenInvalid
	}

	out := &core.Claims{
		TokenID:  claims.ID,
		Subject:  claims.Subject,
		Email:    claims.Email,
		Provider: claims.Provider,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
