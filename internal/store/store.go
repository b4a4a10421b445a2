// Package store abre el backend de usuarios configurado.
//
// Los adapters se registran en init() y se eligen por nombre de driver:
//
//	import _ "github.com/dropDatabas3/socialconnect/internal/store/pg"
//	conn, err := store.Open(ctx, store.Config{Driver: "postgres", DSN: dsn})
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dropDatabas3/socialconnect/internal/domain/repository"
)

// Config describes how to reach a backend.
type Config struct {
	Driver   string
	DSN      string
	MaxConns int
}

// Adapter opens connections for one driver.
type Adapter interface {
	Name() string
	Connect(ctx context.Context, cfg Config) (Connection, error)
}

// Connection exposes the repositories of an opened backend.
type Connection interface {
	Name() string
	Users() repository.UserRepository
	Roles() repository.RoleRepository
	Ping(ctx context.Context) error
	Close() error
}

var (
	adaptersMu sync.RWMutex
	adapters   = map[string]Adapter{}
)

// RegisterAdapter makes an adapter available to Open. Registering the same
// name twice panics.
func RegisterAdapter(a Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	if _, dup := adapters[a.Name()]; dup {
		panic("store: adapter already registered: " + a.Name())
	}
	adapters[a.Name()] = a
}

// Drivers lists registered adapter names, sorted.
func Drivers() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	out := make([]string, 0, len(adapters))
	for name := range adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open connects using the adapter registered for cfg.Driver.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	adaptersMu.RLock()
	a, ok := adapters[cfg.Driver]
	adaptersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q (registered: %v)", cfg.Driver, Drivers())
	}
	conn, err := a.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect %s: %w", cfg.Driver, err)
	}
	return conn, nil
}
