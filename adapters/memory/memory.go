// Package memory is a process-local core.UserStorage. Data does not
// survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/google/uuid"
)

var _ core.UserStorage = (*Store)(nil)

type Store struct {
	mu         sync.RWMutex
	users      map[string]*core.User
	byEmail    map[string]string
	byProvider map[providerKey]string
	now        func() time.Time
}

type providerKey struct {
	provider core.Provider
	subject  string
}

func New() *Store {
	return &Store{
		users:      make(map[string]*core.User),
		byEmail:    make(map[string]string),
		byProvider: make(map[providerKey]string),
		now:        time.Now,
	}
}

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return core.ErrEmailExists
	}
	var pk providerKey
	if u.ProviderID != nil {
		pk = providerKey{u.Provider, *u.ProviderID}
		if _, taken := s.byProvider[pk]; taken {
			return core.ErrUserExists
		}
	}

	u.ID = uuid.NewString()
	now := s.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	s.users[u.ID] = clone(u)
	s.byEmail[u.Email] = u.ID
	if u.ProviderID != nil {
		s.byProvider[pk] = u.ID
	}
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return s.get(id)
}

func (s *Store) GetUserByProvider(_ context.Context, provider core.Provider, providerID string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byProvider[providerKey{provider, providerID}]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return s.get(id)
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	delete(s.users, id)
	delete(s.byEmail, u.Email)
	if u.ProviderID != nil {
		delete(s.byProvider, providerKey{u.Provider, *u.ProviderID})
	}
	return nil
}

// get expects the read lock to be held.
func (s *Store) get(id string) (*core.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return clone(u), nil
}

func clone(u *core.User) *core.User {
	cp := *u
	if u.PasswordHash != nil {
		h := *u.PasswordHash
		cp.PasswordHash = &h
	}
	if u.ProviderID != nil {
		p := *u.ProviderID
		cp.ProviderID = &p
	}
	return &cp
}
