package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-chars"

func testUser() *core.User {
	return &core.User{ID: "user-123", Email: "test@example.com", Provider: core.ProviderEmail}
}

func newTestJWT(t *testing.T, c TokenConfig) *JWT {
	t.Helper()
	if c.Secret == "" {
		c.Secret = testSecret
	}
	j, err := NewJWT(c)
	require.NoError(t, err)
	return j
}

func TestNewJWT_Config(t *testing.T) {
	tests := []struct {
		name    string
		config  TokenConfig
		wantErr error
	}{
		{name: "missing secret", config: TokenConfig{}, wantErr: core.ErrSecretRequired},
		{name: "short secret", config: TokenConfig{Secret: "short"}, wantErr: core.ErrSecretTooShort},
		{name: "valid secret", config: TokenConfig{Secret: testSecret}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			j, err := NewJWT(test.config)

			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, core.DefaultIssuer, j.issuer)
			assert.Equal(t, core.DefaultAudience, j.audience)
			assert.Equal(t, core.DefaultTokenTTL, j.ttl)
		})
	}
}

// Requirement: a freshly issued token verifies and round-trips subject, email and provider.
func TestJWT_IssueVerify_RoundTrip(t *testing.T) {
	// Arrange
	j := newTestJWT(t, TokenConfig{})
	u := testUser()

	// Act
	token, err := j.Issue(u)
	require.NoError(t, err)
	claims, err := j.Verify(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, u.Provider, claims.Provider)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(core.DefaultTokenTTL), claims.ExpiresAt, 5*time.Second)
}

// Requirement: the wire format is three base64url segments carrying iss, aud, sub, iat, exp.
func TestJWT_Issue_WireFormat(t *testing.T) {
	// Arrange
	j := newTestJWT(t, TokenConfig{})

	// Act
	token, err := j.Issue(testUser())
	require.NoError(t, err)

	// Assert
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	for _, key := range []string{"sub", "email", "provider", "iss", "aud", "iat", "exp", "jti"} {
		assert.Contains(t, payload, key)
	}
	assert.Equal(t, core.DefaultIssuer, payload["iss"])
	assert.NotContains(t, payload, "password")
}

// Requirement: expired and forged tokens fail with distinguishable errors.
func TestJWT_Verify_Failures(t *testing.T) {
	good := newTestJWT(t, TokenConfig{})

	past := newTestJWT(t, TokenConfig{TTL: time.Hour})
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	otherSecret := newTestJWT(t, TokenConfig{Secret: "another-secret-that-is-32-chars-long!"})
	otherIssuer := newTestJWT(t, TokenConfig{Issuer: "someone-else"})
	otherAudience := newTestJWT(t, TokenConfig{Audience: "someone-else"})

	expiredForged := newTestJWT(t, TokenConfig{Secret: "another-secret-that-is-32-chars-long!", TTL: time.Hour})
	expiredForged.now = past.now

	issue := func(j *JWT) string {
		token, err := j.Issue(testUser())
		require.NoError(t, err)
		return token
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-123", "provider": "email", "iss": core.DefaultIssuer, "aud": core.DefaultAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: core.ErrTokenInvalid},
		{name: "garbage", token: "invalid-token", wantErr: core.ErrTokenInvalid},
		{name: "expired", token: issue(past), wantErr: core.ErrTokenExpired},
		{name: "wrong secret", token: issue(otherSecret), wantErr: core.ErrTokenInvalid},
		{name: "wrong secret and expired", token: issue(expiredForged), wantErr: core.ErrTokenInvalid},
		{name: "wrong issuer", token: issue(otherIssuer), wantErr: core.ErrTokenInvalid},
		{name: "wrong audience", token: issue(otherAudience), wantErr: core.ErrTokenInvalid},
		{name: "alg none", token: noneToken, wantErr: core.ErrTokenInvalid},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			claims, err := good.Verify(test.token)

			// Assert
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, test.wantErr)
			if errors.Is(test.wantErr, core.ErrTokenInvalid) {
				assert.NotErrorIs(t, err, core.ErrTokenExpired)
			}
			assert.Equal(t, core.KindAuthentication, core.KindOf(err))
		})
	}
}

func TestJWT_Issue_RequiresUserID(t *testing.T) {
	j := newTestJWT(t, TokenConfig{})

	_, err := j.Issue(&core.User{Email: "a@b.co"})

	assert.ErrorIs(t, err, core.ErrInvalidUser)
}

func TestJWT_Issue_UniqueTokenIDs(t *testing.T) {
	j := newTestJWT(t, TokenConfig{})
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := j.Issue(testUser())
		require.NoError(t, err)
		claims, err := j.Verify(token)
		require.NoError(t, err)
		require.False(t, seen[claims.TokenID], "duplicate jti %q", claims.TokenID)
		seen[claims.TokenID] = true
	}
}
