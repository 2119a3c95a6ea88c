// Package storetest checks that a core.UserStorage behaves the way the auth
// service expects. Backends call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/aistudy/authkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Cleanup belongs on t.
type Factory func(t *testing.T) core.UserStorage

func ptr(s string) *string { return &s }

func localUser(email string) *core.User {
	return &core.User{Email: email, PasswordHash: ptr("$2a$04$hash"), Provider: core.ProviderEmail}
}

func socialUser(email string, p core.Provider, subject string) *core.User {
	return &core.User{Email: email, Provider: p, ProviderID: ptr(subject)}
}

func Run(t *testing.T, newStore Factory) {
	t.Run("create assigns id and timestamps", func(t *testing.T) {
		s := newStore(t)
		u := localUser("alice@example.com")

		require.NoError(t, s.CreateUser(context.Background(), u))

		assert.NotEmpty(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())
		assert.False(t, u.UpdatedAt.IsZero())
	})

	t.Run("lookups round trip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		local := localUser("alice@example.com")
		social := socialUser("bob@example.com", core.ProviderKakao, "12345")
		require.NoError(t, s.CreateUser(ctx, local))
		require.NoError(t, s.CreateUser(ctx, social))

		byID, err := s.GetUserByID(ctx, local.ID)
		require.NoError(t, err)
		assert.Equal(t, local.Email, byID.Email)
		require.NotNil(t, byID.PasswordHash)
		assert.Equal(t, *local.PasswordHash, *byID.PasswordHash)
		assert.Nil(t, byID.ProviderID)
		assert.Equal(t, core.ProviderEmail, byID.Provider)

		byEmail, err := s.GetUserByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, social.ID, byEmail.ID)
		assert.Nil(t, byEmail.PasswordHash)

		byProvider, err := s.GetUserByProvider(ctx, core.ProviderKakao, "12345")
		require.NoError(t, err)
		assert.Equal(t, social.ID, byProvider.ID)
		require.NotNil(t, byProvider.ProviderID)
		assert.Equal(t, "12345", *byProvider.ProviderID)
	})

	t.Run("missing records are not found", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateUser(ctx, socialUser("bob@example.com", core.ProviderKakao, "12345")))

		_, err := s.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
		_, err = s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
		_, err = s.GetUserByProvider(ctx, core.ProviderGoogle, "12345")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
		err = s.DeleteUser(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateUser(ctx, localUser("alice@example.com")))

		err := s.CreateUser(ctx, socialUser("alice@example.com", core.ProviderGoogle, "g-1"))

		assert.ErrorIs(t, err, core.ErrEmailExists)
	})

	t.Run("duplicate provider subject is rejected", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateUser(ctx, socialUser("a@example.com", core.ProviderGoogle, "g-1")))

		err := s.CreateUser(ctx, socialUser("b@example.com", core.ProviderGoogle, "g-1"))
		assert.Equal(t, core.KindConflict, core.KindOf(err))

		// same subject under another provider is a different identity
		assert.NoError(t, s.CreateUser(ctx, socialUser("c@example.com", core.ProviderKakao, "g-1")))
	})

	t.Run("malformed records are rejected", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		both := localUser("x@example.com")
		both.ProviderID = ptr("p")

		tests := []*core.User{
			both,
			{Email: "y@example.com", Provider: core.ProviderEmail},
			{Email: "z@example.com", Provider: core.ProviderGoogle, PasswordHash: ptr("h")},
		}
		for _, u := range tests {
			assert.ErrorIs(t, s.CreateUser(ctx, u), core.ErrInvalidUser)
		}
	})

	t.Run("delete removes every index", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		u := socialUser("bob@example.com", core.ProviderApple, "apple-1")
		require.NoError(t, s.CreateUser(ctx, u))

		require.NoError(t, s.DeleteUser(ctx, u.ID))

		_, err := s.GetUserByID(ctx, u.ID)
		assert.ErrorIs(t, err, core.ErrUserNotFound)
		_, err = s.GetUserByEmail(ctx, u.Email)
		assert.ErrorIs(t, err, core.ErrUserNotFound)
		_, err = s.GetUserByProvider(ctx, core.ProviderApple, "apple-1")
		assert.ErrorIs(t, err, core.ErrUserNotFound)

		// the address is free again
		assert.NoError(t, s.CreateUser(ctx, localUser("bob@example.com")))
	})
}
