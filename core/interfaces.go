package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORT
// ============================================

// UserStorage defines credential-record database operations.
//
// Lookups return ErrUserNotFound when nothing matches. CreateUser fills in
// ID and timestamps and returns ErrEmailExists or ErrUserExists on unique
// violations.
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByProvider(ctx context.Context, provider Provider, providerID string) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ============================================
// CACHE PORT
// ============================================

// ExistenceCache remembers whether an account exists. Callers treat every
// error as a miss.
type ExistenceCache interface {
	Get(ctx context.Context, key string) (exists bool, found bool, err error)
	Set(ctx context.Context, key string, exists bool, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// CacheWithStats extends ExistenceCache with statistics tracking
type CacheWithStats interface {
	ExistenceCache
	Stats() CacheStats
}

// ============================================
// CRYPTO PORTS
// ============================================

// PasswordHandler hashes and verifies passwords with a slow, salted,
// adaptive algorithm.
type PasswordHandler interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenManager issues and verifies session tokens. Verify performs no I/O.
type TokenManager interface {
	Issue(u *User) (string, error)
	Verify(token string) (*Claims, error)
}

// ============================================
// SOCIAL PORT
// ============================================

// SocialVerifier exchanges a provider proof for the identity it asserts.
type SocialVerifier interface {
	Provider() Provider
	Verify(ctx context.Context, proof SocialProof) (*Identity, error)
}

// ============================================
// AUTH HANDLER (for HTTP adapters)
// ============================================

// AuthHandler provides authentication operations for HTTP adapters
type AuthHandler interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	SocialAuthenticate(ctx context.Context, proof SocialProof) (*AuthResult, error)
	Authorize(ctx context.Context, token string) (*Claims, error)
	Profile(ctx context.Context, claims *Claims) (*PublicUser, error)
}
