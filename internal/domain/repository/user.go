package repository

import (
	"context"
	"strings"
	"time"
)

// User is the local account a social profile resolves to.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	RoleID    string    `json:"role"`
	Confirmed bool      `json:"confirmed"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFilter selects users. Empty fields do not filter.
// Email is matched case-insensitively.
type UserFilter struct {
	Email    string
	Provider string
}

// Matches reports whether u satisfies the filter.
func (f UserFilter) Matches(u User) bool {
	if f.Email != "" && !strings.EqualFold(f.Email, u.Email) {
		return false
	}
	if f.Provider != "" && f.Provider != u.Provider {
		return false
	}
	return true
}

type CreateUserInput struct {
	Username  string
	Email     string
	Provider  string
	RoleID    string
	Confirmed bool
}

// UserRepository is the user store collaborator.
type UserRepository interface {
	// Find returns every user matching the filter; no match is an empty slice.
	Find(ctx context.Context, filter UserFilter) ([]User, error)

	// Create inserts a user. A duplicate (email, provider) pair returns ErrConflict.
	Create(ctx context.Context, in CreateUserInput) (*User, error)
}
