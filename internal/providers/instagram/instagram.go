// Package instagram implements the Instagram adapter. Instagram does not
// disclose emails, so one is synthesized from the username.
package instagram

import (
	"context"
	"net/url"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.Instagram

const (
	DefaultProfileURL        = "https://api.instagram.com/v1/users/self"
	DefaultPlaceholderDomain = "strapi.io"
)

type Adapter struct {
	Client            *providers.Client
	ProfileURL        string
	PlaceholderDomain string
}

func New(c *providers.Client, placeholderDomain string) *Adapter {
	if placeholderDomain == "" {
		placeholderDomain = DefaultPlaceholderDomain
	}
	return &Adapter{Client: c, ProfileURL: DefaultProfileURL, PlaceholderDomain: placeholderDomain}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

type self struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

func (a *Adapter) FetchProfile(ctx context.Context, artifact string, _ providers.Query, _ providers.Credentials) (providers.RawProfile, error) {
	var s self
	err := a.Client.GetJSON(ctx, ProviderName, "users_self", a.ProfileURL, &s,
		providers.Params(url.Values{"access_token": {artifact}}))
	if err != nil {
		return providers.RawProfile{}, err
	}
	return providers.RawProfile{
		Subject:  s.Data.ID,
		Username: s.Data.Username,
		Email:    PlaceholderEmail(s.Data.Username, a.PlaceholderDomain),
	}, nil
}

// PlaceholderEmail returns "{username}@{domain}", or "" without a username.
func PlaceholderEmail(username, domain string) string {
	if username == "" {
		return ""
	}
	return username + "@" + domain
}
