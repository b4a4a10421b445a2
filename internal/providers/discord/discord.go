// Package discord implements the Discord adapter.
package discord

import (
	"context"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.Discord

const DefaultProfileURL = "https://discord.com/api/users/@me"

type Adapter struct {
	Client     *providers.Client
	ProfileURL string
}

func New(c *providers.Client) *Adapter {
	return &Adapter{Client: c, ProfileURL: DefaultProfileURL}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

type me struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Email         string `json:"email"`
}

func (a *Adapter) FetchProfile(ctx context.Context, artifact string, _ providers.Query, _ providers.Credentials) (providers.RawProfile, error) {
	var u me
	if err := a.Client.GetJSON(ctx, ProviderName, "users_me", a.ProfileURL, &u, providers.Bearer(artifact)); err != nil {
		return providers.RawProfile{}, err
	}
	return providers.RawProfile{Subject: u.ID, Username: Username(u.Username, u.Discriminator), Email: u.Email}, nil
}

// Username combines name and discriminator since Discord names are not
// unique on their own.
func Username(name, discriminator string) string {
	if name == "" {
		return ""
	}
	return name + "#" + discriminator
}
