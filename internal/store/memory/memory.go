// Package memory is an in-process user store. It backs the "memory" storage
// driver and the tests of the packages that reconcile users.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/socialconnect/internal/domain/repository"
	"github.com/dropDatabas3/socialconnect/internal/store"
)

func init() {
	store.RegisterAdapter(adapter{})
}

type adapter struct{}

func (adapter) Name() string { return "memory" }

func (adapter) Connect(_ context.Context, _ store.Config) (store.Connection, error) {
	return New(DefaultRoles()...), nil
}

// DefaultRoles mirrors the roles seeded by the postgres migrations.
func DefaultRoles() []repository.Role {
	return []repository.Role{
		{ID: "1", Name: "Authenticated", Type: "authenticated", Description: "Default role given to authenticated user."},
		{ID: "2", Name: "Public", Type: "public", Description: "Default role given to unauthenticated user."},
	}
}

// Store keeps users and roles in memory guarded by a single RWMutex.
type Store struct {
	mu    sync.RWMutex
	users []repository.User
	roles map[string]repository.Role
	now   func() time.Time
}

func New(roles ...repository.Role) *Store {
	s := &Store{roles: make(map[string]repository.Role, len(roles)), now: time.Now}
	for _, r := range roles {
		s.roles[r.Type] = r
	}
	return s
}

func (s *Store) Name() string                     { return "memory" }
func (s *Store) Users() repository.UserRepository { return s }
func (s *Store) Roles() repository.RoleRepository { return s }
func (s *Store) Ping(context.Context) error       { return nil }
func (s *Store) Close() error                     { return nil }

func (s *Store) Find(_ context.Context, f repository.UserFilter) ([]repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []repository.User{}
	for _, u := range s.users {
		if f.Matches(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if strings.TrimSpace(in.Email) == "" || in.Provider == "" {
		return nil, repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Provider == in.Provider && strings.EqualFold(u.Email, in.Email) {
			return nil, repository.ErrConflict
		}
	}
	now := s.now().UTC()
	u := repository.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		Provider:  in.Provider,
		RoleID:    in.RoleID,
		Confirmed: in.Confirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users = append(s.users, u)
	return &u, nil
}

// Put inserts a user as-is. Intended for fixtures.
func (s *Store) Put(u repository.User) repository.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users = append(s.users, u)
	return u
}

// Count returns the number of stored users.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) FindOneByType(_ context.Context, roleType string) (*repository.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleType]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}
