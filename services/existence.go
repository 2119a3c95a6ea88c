package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/aistudy/authkit/internal/logutil"
)

// DefaultCacheTimeout bounds every existence cache call. A slower cache is
// treated as a miss.
const DefaultCacheTimeout = 100 * time.Millisecond

// ExistenceChecker answers "does this account still exist" for token
// holders, remembering the answer for a while.
//
// A positive answer may outlive the account by up to the TTL; that is the
// price of not hitting the store on every request.
type ExistenceChecker struct {
	storage      core.UserStorage
	cache        core.ExistenceCache // nil disables caching
	ttl          time.Duration
	cacheTimeout time.Duration
}

func NewExistenceChecker(storage core.UserStorage, cache core.ExistenceCache, ttl time.Duration) *ExistenceChecker {
	if ttl <= 0 {
		ttl = core.DefaultExistenceTTL
	}
	return &ExistenceChecker{storage: storage, cache: cache, ttl: ttl, cacheTimeout: DefaultCacheTimeout}
}

// WithCacheTimeout replaces the per-call cache deadline.
func (e *ExistenceChecker) WithCacheTimeout(d time.Duration) *ExistenceChecker {
	if d > 0 {
		e.cacheTimeout = d
	}
	return e
}

// Exists returns nil when the account exists and ErrUserNotFound when it
// does not. Any other error comes from the store.
func (e *ExistenceChecker) Exists(ctx context.Context, userID string) error {
	log := logutil.GetOrDefault(ctx)
	key := core.ExistenceKey(userID)

	if e.cache != nil {
		exists, found, err := e.cacheGet(ctx, key)
		switch {
		case err != nil:
			log.Debug().Err(err).Str("key", key).Msg("existence cache read failed, treating as miss")
		case found && exists:
			return nil
		case found:
			return core.ErrUserNotFound
		}
	}

	_, err := e.storage.GetUserByID(ctx, userID)
	switch {
	case err == nil:
		e.remember(ctx, key, true)
		return nil
	case errors.Is(err, core.ErrUserNotFound):
		e.remember(ctx, key, false)
		return core.ErrUserNotFound
	default:
		return fmt.Errorf("failed to look up user: %w", err)
	}
}

// Forget drops whatever is cached for userID.
func (e *ExistenceChecker) Forget(ctx context.Context, userID string) {
	if e.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, e.cacheTimeout)
	defer cancel()
	if err := e.cache.Delete(cctx, core.ExistenceKey(userID)); err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Debug().Err(err).Msg("existence cache delete failed")
	}
}

func (e *ExistenceChecker) cacheGet(ctx context.Context, key string) (bool, bool, error) {
	cctx, cancel := context.WithTimeout(ctx, e.cacheTimeout)
	defer cancel()
	return e.cache.Get(cctx, key)
}

func (e *ExistenceChecker) remember(ctx context.Context, key string, exists bool) {
	if e.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, e.cacheTimeout)
	defer cancel()
	if err := e.cache.Set(cctx, key, exists, e.ttl); err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Debug().Err(err).Str("key", key).Msg("existence cache write failed")
	}
}
