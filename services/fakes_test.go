package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aistudy/authkit/core"
)

// FakeUserStorage is a test-only map-backed core.UserStorage with error
// injection and lookup counters.
type FakeUserStorage struct {
	mu     sync.RWMutex
	users  map[string]*core.User
	nextID int

	createErr error
	getErr    error

	byIDCalls int64
}

func NewFakeUserStorage() *FakeUserStorage {
	return &FakeUserStorage{users: make(map[string]*core.User)}
}

func (f *FakeUserStorage) CreateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if err := u.Validate(); err != nil {
		return err
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return core.ErrEmailExists
		}
		if u.ProviderID != nil && existing.ProviderID != nil &&
			existing.Provider == u.Provider && *existing.ProviderID == *u.ProviderID {
			return core.ErrUserExists
		}
	}
	f.nextID++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *FakeUserStorage) GetUserByID(_ context.Context, id string) (*core.User, error) {
	atomic.AddInt64(&f.byIDCalls, 1)
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *FakeUserStorage) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeUserStorage) GetUserByProvider(_ context.Context, provider core.Provider, providerID string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Provider == provider && u.ProviderID != nil && *u.ProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeUserStorage) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return core.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *FakeUserStorage) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.users)
}

func (f *FakeUserStorage) ByIDCalls() int64 {
	return atomic.LoadInt64(&f.byIDCalls)
}

// fakeFailingCache fails every operation.
type fakeFailingCache struct{}

var errCacheDown = errors.New("cache down")

func (fakeFailingCache) Get(context.Context, string) (bool, bool, error) {
	return false, false, errCacheDown
}

func (fakeFailingCache) Set(context.Context, string, bool, time.Duration) error {
	return errCacheDown
}

func (fakeFailingCache) Delete(context.Context, string) error { return errCacheDown }

// fakeVerifier returns a fixed identity or error for one provider.
type fakeVerifier struct {
	provider core.Provider
	identity *core.Identity
	err      error
}

func (f *fakeVerifier) Provider() core.Provider { return f.provider }

func (f *fakeVerifier) Verify(context.Context, core.SocialProof) (*core.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := *f.identity
	return &id, nil
}

// fakeSlowCache blocks every call until ctx ends, like a cache behind a
// dead network.
type fakeSlowCache struct {
	calls atomic.Int64
}

func (f *fakeSlowCache) wait(ctx context.Context) error {
	f.calls.Add(1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return errCacheDown
	}
}

func (f *fakeSlowCache) Get(ctx context.Context, _ string) (bool, bool, error) {
	return false, false, f.wait(ctx)
}

func (f *fakeSlowCache) Set(ctx context.Context, _ string, _ bool, _ time.Duration) error {
	return f.wait(ctx)
}

func (f *fakeSlowCache) Delete(ctx context.Context, _ string) error { return f.wait(ctx) }

// countingPasswords wraps a PasswordHandler and counts Verify calls.
type countingPasswords struct {
	core.PasswordHandler
	verifies atomic.Int64
}

func (c *countingPasswords) Verify(password, hash string) (bool, error) {
	c.verifies.Add(1)
	return c.PasswordHandler.Verify(password, hash)
}
