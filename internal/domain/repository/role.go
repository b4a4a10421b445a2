package repository

import "context"

// Role groups permissions; Type is the stable key used by settings
// (for example "authenticated").
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type RoleRepository interface {
	// FindOneByType returns ErrNotFound when no role has the given type.
	FindOneByType(ctx context.Context, roleType string) (*Role, error)
}
