// Package settings is the configuration store the broker reads at request
// time: per-provider grant entries and the advanced registration policy.
package settings

import (
	"context"
	"maps"
	"slices"
)

const (
	// Keys of the stored documents, shared by every backend.
	GrantKey    = "plugin_users-permissions_grant"
	AdvancedKey = "plugin_users-permissions_advanced"
)

// Grant is the stored OAuth entry of one provider.
type Grant struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Key      string   `json:"key,omitempty" yaml:"key"`
	Secret   string   `json:"secret,omitempty" yaml:"secret"`
	Callback string   `json:"callback,omitempty" yaml:"callback"`
	Scope    []string `json:"scope,omitempty" yaml:"scope" validate:"dive,oauth_scope"`
}

// Advanced drives the reconciliation policy.
type Advanced struct {
	AllowRegister bool   `json:"allow_register" yaml:"allow_register"`
	UniqueEmail   bool   `json:"unique_email" yaml:"unique_email"`
	DefaultRole   string `json:"default_role" yaml:"default_role"`
}

// DefaultAdvanced matches a fresh install: registration open, one account
// per email, new users get the "authenticated" role.
func DefaultAdvanced() Advanced {
	return Advanced{AllowRegister: true, UniqueEmail: true, DefaultRole: "authenticated"}
}

// Source is a read-only view of the configuration store.
type Source interface {
	Grants(ctx context.Context) (map[string]Grant, error)
	Advanced(ctx context.Context) (Advanced, error)
}

// Static serves fixed values, typically loaded from the config file.
type Static struct {
	grants   map[string]Grant
	advanced Advanced
}

func NewStatic(grants map[string]Grant, advanced Advanced) *Static {
	return &Static{grants: cloneGrants(grants), advanced: advanced}
}

func (s *Static) Grants(context.Context) (map[string]Grant, error) {
	return cloneGrants(s.grants), nil
}

func (s *Static) Advanced(context.Context) (Advanced, error) { return s.advanced, nil }

func cloneGrants(in map[string]Grant) map[string]Grant {
	out := make(map[string]Grant, len(in))
	for k, g := range in {
		g.Scope = slices.Clone(g.Scope)
		out[k] = g
	}
	return out
}

// Enabled projects grants onto their enabled flag.
func Enabled(grants map[string]Grant) map[string]bool {
	out := make(map[string]bool, len(grants))
	for name, g := range grants {
		out[name] = g.Enabled
	}
	return out
}

// Names returns the provider names of grants, sorted.
func Names(grants map[string]Grant) []string {
	return slices.Sorted(maps.Keys(grants))
}
