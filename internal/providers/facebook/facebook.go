// Package facebook implements the Facebook Graph adapter.
package facebook

import (
	"context"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.Facebook

const (
	DefaultTokenURL   = "https://graph.facebook.com/v7.0/oauth/access_token"
	DefaultProfileURL = "https://graph.facebook.com/me"
)

type Adapter struct {
	Client     *providers.Client
	TokenURL   string
	ProfileURL string
}

func New(c *providers.Client) *Adapter {
	return &Adapter{Client: c, TokenURL: DefaultTokenURL, ProfileURL: DefaultProfileURL}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

type me struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *Adapter) FetchProfile(ctx context.Context, artifact string, q providers.Query, creds providers.Credentials) (providers.RawProfile, error) {
	token := artifact
	if q.Code != "" {
		tok, err := a.Client.Exchange(ctx, ProviderName, oauth2.Endpoint{TokenURL: a.TokenURL}, creds, q.Code)
		if err != nil {
			return providers.RawProfile{}, err
		}
		token = tok.AccessToken
	}

	var p me
	err := a.Client.GetJSON(ctx, ProviderName, "me", a.ProfileURL, &p,
		providers.Bearer(token),
		providers.Params(url.Values{"fields": {"name,email"}}))
	if err != nil {
		return providers.RawProfile{}, err
	}
	return providers.RawProfile{Subject: p.ID, Username: p.Name, Email: p.Email}, nil
}
