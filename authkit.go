// Package authkit wires the credential and session core into a ready
// authenticator: password and social sign-in, stateless session tokens and
// bearer authorization backed by a pluggable user store.
package authkit

import (
	"fmt"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/aistudy/authkit/pkg/cache"
	"github.com/aistudy/authkit/pkg/crypto"
	"github.com/aistudy/authkit/pkg/social"
	"github.com/aistudy/authkit/services"
)

// interfaces
type (
	UserStorage    = core.UserStorage
	ExistenceCache = core.ExistenceCache
	SocialVerifier = core.SocialVerifier
	HTTPAdapter    = core.HTTPAdapter
	AuthHandler    = core.AuthHandler

	PasswordHandler = crypto.PasswordHandler
)

type (
	User        = core.User
	PublicUser  = core.PublicUser
	AuthResult  = core.AuthResult
	Claims      = core.Claims
	Provider    = core.Provider
	SocialProof = core.SocialProof
	GoogleProof = core.GoogleProof
	KakaoProof  = core.KakaoProof
	AppleProof  = core.AppleProof
	CacheStats  = core.CacheStats
)

const (
	defaultBasePath = "/api/auth"
)

// Constructors & helpers (convenience re-exports)
var (
	NewBcrypt        = crypto.NewBcrypt
	NewArgon2        = crypto.NewArgon2
	NewMemoryCache   = cache.NewMemory
	ParseSocialProof = core.ParseSocialProof
	KindOf           = core.KindOf
)

var (
	ErrEmailExists        = core.ErrEmailExists
	ErrUserExists         = core.ErrUserExists
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrValidation         = core.ErrValidation
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidAuthHeader = core.ErrInvalidAuthHeader
	ErrTokenInvalid      = core.ErrTokenInvalid
	ErrTokenExpired      = core.ErrTokenExpired
)

var (
	ErrUnsupportedProvider = core.ErrUnsupportedProvider
	ErrMissingProof        = core.ErrMissingProof
	ErrProviderRejected    = core.ErrProviderRejected
	ErrProviderUnavailable = core.ErrProviderUnavailable
	ErrEmailNotVerified    = core.ErrEmailNotVerified
)

var (
	ErrStorageRequired = core.ErrStorageRequired
	ErrSecretRequired  = core.ErrSecretRequired
	ErrSecretTooShort  = core.ErrSecretTooShort
)

type Config struct {
	// Secret signs session tokens. At least 32 characters.
	Secret   string
	Issuer   string
	Audience string
	TokenTTL time.Duration

	Storage UserStorage

	// Cache remembers account existence for ExistenceTTL. Defaults to an
	// in-memory cache unless DisableCache is set.
	Cache        ExistenceCache
	DisableCache bool
	ExistenceTTL time.Duration

	PasswordHasher PasswordHandler // default bcrypt, cost 12
	Social         []SocialVerifier

	LoginFloor time.Duration
	HashSlots  int64

	// HTTP, when set, gets the auth routes mounted under BasePath.
	HTTP     HTTPAdapter
	BasePath string
}

type Authkit struct {
	*services.AuthService

	Cache    ExistenceCache
	BasePath string
}

func New(config Config) (*Authkit, error) {
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}

	tokens, err := crypto.NewJWT(crypto.TokenConfig{
		Secret:   config.Secret,
		Issuer:   config.Issuer,
		Audience: config.Audience,
		TTL:      config.TokenTTL,
	})
	if err != nil {
		return nil, err
	}

	// Set Defaults

	existenceTTL := config.ExistenceTTL
	if existenceTTL == 0 {
		existenceTTL = core.DefaultExistenceTTL
	}

	existenceCache := config.Cache
	if existenceCache == nil && !config.DisableCache {
		existenceCache = cache.NewMemory(cache.Config{
			TTL:     existenceTTL,
			MaxSize: 10000,
		})
	}
	if config.DisableCache {
		existenceCache = nil
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewBcrypt()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	var registry *social.Registry
	if len(config.Social) > 0 {
		registry = social.NewRegistry(config.Social...)
	}

	service, err := services.NewAuthService(services.AuthConfig{
		Storage:    config.Storage,
		Passwords:  passwordHasher,
		Tokens:     tokens,
		Existence:  services.NewExistenceChecker(config.Storage, existenceCache, existenceTTL),
		Social:     registry,
		LoginFloor: config.LoginFloor,
		HashSlots:  config.HashSlots,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create auth service: %w", err)
	}

	kit := &Authkit{
		AuthService: service,
		Cache:       existenceCache,
		BasePath:    basePath,
	}

	if config.HTTP != nil {
		if err := config.HTTP.RegisterRoutes(kit, basePath); err != nil {
			return nil, err
		}
	}

	return kit, nil
}
