package authkit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aistudy/authkit/adapters/memory"
	"github.com/aistudy/authkit/pkg/cache"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "secretshouldbeatleast32charslong"

type recordingAdapter struct {
	handler  AuthHandler
	basePath string
	err      error
}

func (r *recordingAdapter) RegisterRoutes(handler AuthHandler, basePath string) error {
	r.handler = handler
	r.basePath = basePath
	return r.err
}

func TestNew_Config(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "missing storage", config: Config{Secret: testSecret}, wantErr: ErrStorageRequired},
		{name: "missing secret", config: Config{Storage: memory.New()}, wantErr: ErrSecretRequired},
		{name: "short secret", config: Config{Storage: memory.New(), Secret: "short"}, wantErr: ErrSecretTooShort},
		{name: "adapter failure", config: Config{Storage: memory.New(), Secret: testSecret, HTTP: &recordingAdapter{err: errors.New("boom")}}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			kit, err := New(test.config)

			// Assert
			if err == nil {
				t.Fatal("New() should fail")
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("New() error = %v, want %v", err, test.wantErr)
			}
			if kit != nil {
				t.Error("New() should not return an instance on error")
			}
		})
	}
}

func TestNew_ShortSecretMessage(t *testing.T) {
	_, err := New(Config{Storage: memory.New(), Secret: "short"})

	if err == nil || !strings.Contains(err.Error(), "minimum of 32") {
		t.Errorf("New() error = %v, want minimum length hint", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantCache bool
		wantPath  string
	}{
		{name: "default cache and path", config: Config{}, wantCache: true, wantPath: "/api/auth"},
		{name: "cache disabled", config: Config{DisableCache: true}, wantCache: false, wantPath: "/api/auth"},
		{name: "custom cache and path", config: Config{Cache: cache.NewMemory(cache.Config{}), BasePath: "/auth"}, wantCache: true, wantPath: "/auth"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			adapter := &recordingAdapter{}
			config := test.config
			config.Storage = memory.New()
			config.Secret = testSecret
			config.PasswordHasher = NewBcrypt(bcrypt.MinCost)
			config.HTTP = adapter

			// Act
			kit, err := New(config)

			// Assert
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if (kit.Cache != nil) != test.wantCache {
				t.Errorf("Cache = %v, wantCache %v", kit.Cache, test.wantCache)
			}
			if kit.BasePath != test.wantPath || adapter.basePath != test.wantPath {
				t.Errorf("BasePath = %q / %q, want %q", kit.BasePath, adapter.basePath, test.wantPath)
			}
			if adapter.handler != AuthHandler(kit) {
				t.Error("adapter should receive the authkit instance")
			}
		})
	}
}

// Requirement: register then login through the facade, then authorize the token.
func TestAuthkit_EndToEnd(t *testing.T) {
	// Arrange
	kit, err := New(Config{
		Storage:        memory.New(),
		Secret:         testSecret,
		PasswordHasher: NewBcrypt(bcrypt.MinCost),
		LoginFloor:     time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	// Act
	registered, err := kit.Register(ctx, "Test@Example.com", "Password123!")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, dupErr := kit.Register(ctx, "test@example.com", "Password123!")
	loggedIn, err := kit.Login(ctx, "test@example.com", "Password123!")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := kit.Authorize(ctx, loggedIn.Token)

	// Assert
	if !errors.Is(dupErr, ErrEmailExists) {
		t.Errorf("duplicate Register() error = %v, want ErrEmailExists", dupErr)
	}
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if claims.Subject != registered.User.ID {
		t.Errorf("Subject = %q, want %q", claims.Subject, registered.User.ID)
	}
	if _, err := kit.SocialAuthenticate(ctx, GoogleProof{AccessToken: "t"}); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("SocialAuthenticate() without verifiers error = %v", err)
	}
}
