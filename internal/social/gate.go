package social

import (
	"context"

	"github.com/dropDatabas3/socialconnect/internal/settings"
)

// Gate answers which providers are enabled in the configuration store.
type Gate struct {
	settings settings.Source
}

func NewGate(src settings.Source) *Gate { return &Gate{settings: src} }

// IsEnabled reports whether name is enabled. A provider missing from the
// store is disabled, not an error; errors only come from the store itself.
func (g *Gate) IsEnabled(ctx context.Context, name string) (bool, error) {
	grant, err := g.lookup(ctx, name)
	if err != nil {
		return false, err
	}
	return grant.Enabled, nil
}

// ListEnabled returns the enabled flag of every configured provider.
func (g *Gate) ListEnabled(ctx context.Context) (map[string]bool, error) {
	grants, err := g.settings.Grants(ctx)
	if err != nil {
		return nil, err
	}
	return settings.Enabled(grants), nil
}

func (g *Gate) lookup(ctx context.Context, name string) (settings.Grant, error) {
	grants, err := g.settings.Grants(ctx)
	if err != nil {
		return settings.Grant{}, err
	}
	return grants[name], nil
}
