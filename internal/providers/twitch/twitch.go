// Package twitch implements the Twitch Helix adapter. Helix requires the
// application's Client-ID next to the user's bearer token.
package twitch

import (
	"context"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.Twitch

const DefaultUsersURL = "https://api.twitch.tv/helix/users"

type Adapter struct {
	Client   *providers.Client
	UsersURL string
}

func New(c *providers.Client) *Adapter {
	return &Adapter{Client: c, UsersURL: DefaultUsersURL}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

type users struct {
	Data []struct {
		ID    string `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	} `json:"data"`
}

func (a *Adapter) FetchProfile(ctx context.Context, artifact string, _ providers.Query, creds providers.Credentials) (providers.RawProfile, error) {
	var body users
	err := a.Client.GetJSON(ctx, ProviderName, "users", a.UsersURL, &body,
		providers.Bearer(artifact),
		providers.Header("Client-ID", creds.Key))
	if err != nil {
		return providers.RawProfile{}, err
	}
	if len(body.Data) == 0 {
		return providers.RawProfile{}, &providers.ProviderError{Provider: ProviderName, Op: "users", Cause: providers.ErrIncompleteProfile}
	}
	u := body.Data[0]
	return providers.RawProfile{Subject: u.ID, Username: u.Login, Email: u.Email}, nil
}
