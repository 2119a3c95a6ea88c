package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/aistudy/authkit/internal/logutil"
	"github.com/aistudy/authkit/pkg/social"
	"golang.org/x/sync/semaphore"
)

// dummyPassword is hashed once at construction so that logins for unknown
// accounts pay for a real verification.
const dummyPassword = "dummy-password-for-timing-Aa1!"

type AuthConfig struct {
	Storage   core.UserStorage
	Passwords core.PasswordHandler
	Tokens    core.TokenManager
	Existence *ExistenceChecker
	Social    *social.Registry // nil rejects every social login

	Policy     core.PasswordPolicy
	LoginFloor time.Duration
	HashSlots  int64
}

type AuthService struct {
	storage    core.UserStorage
	passwords  core.PasswordHandler
	tokens     core.TokenManager
	existence  *ExistenceChecker
	social     *social.Registry
	policy     core.PasswordPolicy
	loginFloor time.Duration
	hashSlots  *semaphore.Weighted
	dummyHash  string
}

// Ensure AuthService implements AuthHandler
var _ core.AuthHandler = (*AuthService)(nil)

func NewAuthService(c AuthConfig) (*AuthService, error) {
	if c.Storage == nil {
		return nil, core.ErrStorageRequired
	}
	if c.Passwords == nil || c.Tokens == nil {
		return nil, errors.New("password handler and token manager are required")
	}
	if c.Existence == nil {
		c.Existence = NewExistenceChecker(c.Storage, nil, 0)
	}
	if c.Policy == (core.PasswordPolicy{}) {
		c.Policy = core.DefaultPasswordPolicy()
	}
	if c.LoginFloor == 0 {
		c.LoginFloor = core.DefaultLoginFloor
	}
	if c.HashSlots <= 0 {
		c.HashSlots = int64(runtime.GOMAXPROCS(0))
	}

	dummy, err := c.Passwords.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		storage:    c.Storage,
		passwords:  c.Passwords,
		tokens:     c.Tokens,
		existence:  c.Existence,
		social:     c.Social,
		policy:     c.Policy,
		loginFloor: c.LoginFloor,
		hashSlots:  semaphore.NewWeighted(c.HashSlots),
		dummyHash:  dummy,
	}, nil
}

// Register creates a local account and signs the user in.
func (s *AuthService) Register(ctx context.Context, email, password string) (*core.AuthResult, error) {
	log := logutil.GetOrDefault(ctx)

	// Step 1: Validate input
	email = core.NormalizeEmail(email)
	if err := core.CheckEmail(email); err != nil {
		return nil, err
	}
	if err := s.policy.Check(password); err != nil {
		return nil, err
	}

	// Step 2: Check if the address is taken
	existing, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrEmailExists
	}

	// Step 3: Hash the password
	var hash string
	err = s.withHashSlot(ctx, func() (err error) {
		hash, err = s.passwords.Hash(password)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 4: Create the user. A unique violation here means another
	// request won the race for this address.
	user := &core.User{
		Email:        email,
		PasswordHash: &hash,
		Provider:     core.ProviderEmail,
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if core.KindOf(err) == core.KindConflict {
			return nil, core.ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("provider", string(user.Provider)).Msg("account registered")
	return s.signIn(user)
}

// Login checks email and password. Every failure takes at least the login
// floor and returns ErrInvalidCredentials, whatever the cause.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.AuthResult, error) {
	log := logutil.GetOrDefault(ctx)
	start := time.Now()

	user, reason, err := s.checkCredentials(ctx, email, password)

	if werr := s.waitFloor(ctx, start); werr != nil {
		return nil, fmt.Errorf("login aborted: %w", werr)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		log.Info().Str("reason", reason).Msg("login rejected")
		return nil, core.ErrInvalidCredentials
	}

	log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return s.signIn(user)
}

// checkCredentials returns the matching user, or nil plus a reason for the
// log. A non-nil error is an infrastructure failure.
func (s *AuthService) checkCredentials(ctx context.Context, email, password string) (*core.User, string, error) {
	email = core.NormalizeEmail(email)

	shapeOK := email != "" && len(email) <= core.EmailMaxLength && core.CheckLoginPassword(password) == nil
	if !shapeOK {
		s.verify(ctx, dummyPassword, s.dummyHash)
		return nil, "malformed input", nil
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		s.verify(ctx, password, s.dummyHash)
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	// Unknown accounts and social accounts verify against the dummy hash
	// so that all three paths cost the same.
	if user == nil || user.Provider != core.ProviderEmail || user.PasswordHash == nil {
		s.verify(ctx, password, s.dummyHash)
		if user == nil {
			return nil, "unknown email", nil
		}
		return nil, "not a password account", nil
	}

	if !s.verify(ctx, password, *user.PasswordHash) {
		return nil, "wrong password", nil
	}
	return user, "", nil
}

func (s *AuthService) verify(ctx context.Context, password, hash string) bool {
	var ok bool
	err := s.withHashSlot(ctx, func() (err error) {
		ok, err = s.passwords.Verify(password, hash)
		return err
	})
	if err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Msg("password verification failed")
		return false
	}
	return ok
}

// SocialAuthenticate signs in with a provider proof, creating the account
// on first use.
func (s *AuthService) SocialAuthenticate(ctx context.Context, proof core.SocialProof) (*core.AuthResult, error) {
	log := logutil.GetOrDefault(ctx)

	if proof == nil {
		return nil, core.ErrMissingProof
	}
	if s.social == nil {
		return nil, core.ErrUnsupportedProvider
	}

	// Step 1: Ask the provider who this is
	identity, err := s.social.Verify(ctx, proof)
	if err != nil {
		log.Info().Err(err).Str("provider", string(proof.Provider())).Msg("social proof rejected")
		return nil, err
	}

	// Step 2: Known identity signs straight in
	user, err := s.storage.GetUserByProvider(ctx, identity.Provider, identity.Subject)
	if err == nil {
		log.Info().Str("user_id", user.ID).Str("provider", string(user.Provider)).Msg("social login succeeded")
		return s.signIn(user)
	}
	if !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Step 3: First sign-in creates the account. Only a verified,
	// well-formed address may claim an email; anything else gets a
	// placeholder.
	email := core.NormalizeEmail(identity.Email)
	if email == "" || !identity.EmailVerified || core.CheckEmail(email) != nil {
		email = core.PlaceholderEmail(identity.Provider, identity.Subject)
	}

	existing, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		log.Info().Str("provider", string(identity.Provider)).Msg("social email already registered")
		return nil, core.ErrEmailExists
	}

	subject := identity.Subject
	user = &core.User{
		Email:      email,
		Provider:   identity.Provider,
		ProviderID: &subject,
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if core.KindOf(err) == core.KindConflict {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("provider", string(user.Provider)).Msg("social account registered")
	return s.signIn(user)
}

// Authorize verifies a bearer token and checks that its account still
// exists.
func (s *AuthService) Authorize(ctx context.Context, token string) (*core.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if err := s.existence.Exists(ctx, claims.Subject); err != nil {
		return nil, err
	}
	return claims, nil
}

// Profile returns the current public view of the token's account.
func (s *AuthService) Profile(ctx context.Context, claims *core.Claims) (*core.PublicUser, error) {
	if claims == nil || claims.Subject == "" {
		return nil, core.ErrTokenInvalid
	}
	user, err := s.storage.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			s.existence.Forget(ctx, claims.Subject)
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) signIn(user *core.User) (*core.AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &core.AuthResult{User: user.Public(), Token: token}, nil
}

func (s *AuthService) withHashSlot(ctx context.Context, fn func() error) error {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.hashSlots.Release(1)
	return fn()
}

// waitFloor sleeps until at least loginFloor has passed since start.
func (s *AuthService) waitFloor(ctx context.Context, start time.Time) error {
	remaining := s.loginFloor - time.Since(start)
	if remaining <= 0 {
		return nil
	}
	t := time.NewTimer(remaining)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
