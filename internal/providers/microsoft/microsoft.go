// Package microsoft implements the Microsoft Graph adapter.
package microsoft

import (
	"context"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.Microsoft

const DefaultMeURL = "https://graph.microsoft.com/v1.0/me"

type Adapter struct {
	Client *providers.Client
	MeURL  string
}

func New(c *providers.Client) *Adapter {
	return &Adapter{Client: c, MeURL: DefaultMeURL}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

type me struct {
	ID                string `json:"id"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// FetchProfile uses userPrincipalName as both username and email.
func (a *Adapter) FetchProfile(ctx context.Context, artifact string, _ providers.Query, _ providers.Credentials) (providers.RawProfile, error) {
	var m me
	if err := a.Client.GetJSON(ctx, ProviderName, "me", a.MeURL, &m, providers.Bearer(artifact)); err != nil {
		return providers.RawProfile{}, err
	}
	return providers.RawProfile{Subject: m.ID, Username: m.UserPrincipalName, Email: m.UserPrincipalName}, nil
}
